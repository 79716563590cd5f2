// Package linker binds a module's imports to host functions by name.
//
// Definitions live in a namespace tree. Module names may carry a semantic
// version suffix:
//
//	l := linker.NewWithDefaults(store)
//	l.Define("env@1.4.1", "log", logFn)
//	l.DefineFunc("wasi:io/streams@0.2.0#read", readFn)
//
// With SemverMatching (the default) an import from "env@1.2.0" resolves to
// the highest defined version satisfying ^1.2.0, here env@1.4.1. env@2.0.0
// would not match.
//
// Instantiate resolves every function import in declaration order, reports
// all missing ones in a single *errors.MissingImportsError, and hands the
// resolved functions to engine.NewInstance.
package linker
