package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-hostcall/engine"
	"github.com/wippyai/wasm-hostcall/linker"
	"github.com/wippyai/wasm-hostcall/runtime"
)

type stubFlags []string

func (s *stubFlags) String() string { return strings.Join(*s, "; ") }

func (s *stubFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var stubs stubFlags
	var (
		wasmFile    = flag.String("wasm", "", "Path to core wasm module")
		funcName    = flag.String("func", "", "Function to call (optional)")
		argsStr     = flag.String("args", "", "Comma-separated arguments")
		configFile  = flag.String("config", "", "YAML run configuration")
		list        = flag.Bool("list", false, "List imports and exports and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Var(&stubs, "stub", `Stub import, e.g. "env.log(s32, f64) -> i32" (repeatable)`)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-func name] [-args a,b] [-config cfg.yaml] [-stub sig]...")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Stubs = append(cfg.Stubs, stubs...)
	if *funcName != "" {
		cfg.Func = *funcName
	}
	if *argsStr != "" {
		cfg.Args = splitArgs(*argsStr)
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	if *interactive {
		if err := runInteractive(*wasmFile, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, cfg, logger, *list, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRuntime creates a runtime with the built-in env host and all stubs
// registered. Host output goes to out.
func newRuntime(ctx context.Context, cfg *Config, logger *zap.Logger, out io.Writer) (*runtime.Runtime, error) {
	sess := &session{trace: newTracer(out)}

	rt, err := runtime.New(ctx,
		runtime.WithConfig(cfg.Engine),
		runtime.WithData(sess),
		runtime.WithLogger(logger),
		runtime.WithLinkerOptions(linker.Options{SemverMatching: cfg.semverMatching()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	if err := rt.RegisterHost(newEnvHost(out)); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("register env: %w", err)
	}

	for _, s := range cfg.Stubs {
		def, err := parseStub(s)
		if err != nil {
			rt.Close(ctx)
			return nil, err
		}
		if err := rt.RegisterCallable(def.Module, def.Name, def.Type, def.callable(), engine.WithCaller()); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("register stub: %w", err)
		}
		logger.Debug("registered stub",
			zap.String("module", def.Module),
			zap.String("name", def.Name),
			zap.String("type", def.Type.String()))
	}

	return rt, nil
}

func run(wasmFile string, cfg *Config, logger *zap.Logger, listOnly bool, out io.Writer) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	rt, err := newRuntime(ctx, cfg, logger, out)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	module, err := rt.LoadWASM(ctx, data)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	if listOnly {
		printModule(out, wasmFile, module)
		return nil
	}

	if missing := module.MissingImports(); len(missing) > 0 {
		fmt.Fprintf(out, "Unresolved imports (use -stub): %s\n", strings.Join(missing, ", "))
	}

	instance, err := module.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer instance.Close(ctx)

	funcName := cfg.Func
	if funcName == "" {
		funcName = defaultEntry(instance.Exports())
		if funcName == "" {
			fmt.Fprintf(out, "No function specified and no common entry point found.\n")
			fmt.Fprintf(out, "Use -func to specify a function to call.\n")
			return nil
		}
	}

	ft, ok := instance.ExportType(funcName)
	if !ok {
		return fmt.Errorf("export %q not found", funcName)
	}
	args, err := parseArgs(cfg.Args, ft.Params)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	result, err := instance.Call(ctx, funcName, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	if result != nil {
		fmt.Fprintf(out, "Result: %s\n", formatValue(result))
	}
	return nil
}

func printModule(out io.Writer, name string, module *runtime.Module) {
	imports := module.Imports()
	exports := module.Exports()

	fmt.Fprintf(out, "Module: %s\n", name)
	fmt.Fprintf(out, "\nImports: %d\n", len(imports))
	for _, imp := range imports {
		fmt.Fprintf(out, "  %s#%s %s\n", imp.Module, imp.Name, imp.Type)
	}
	fmt.Fprintf(out, "\nExports: %d\n", len(exports))
	for _, exp := range exports {
		fmt.Fprintf(out, "  %s %s\n", exp.Name, exp.Type)
	}
}

// defaultEntry picks _start, run or main, or the only export.
func defaultEntry(exports []string) string {
	for _, name := range []string{"_start", "run", "main"} {
		for _, e := range exports {
			if e == name {
				return name
			}
		}
	}
	if len(exports) == 1 {
		return exports[0]
	}
	return ""
}
