package wasm

import (
	"bytes"
	"testing"
)

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func TestModule_EncodeEmpty(t *testing.T) {
	m := &Module{}
	if got := m.Encode(); !bytes.Equal(got, header) {
		t.Errorf("empty module = % x, want % x", got, header)
	}
}

func TestBuilder_StartImport(t *testing.T) {
	b := NewBuilder()
	idx := b.ImportFunc("", "", FuncType{})
	b.Start(idx)

	got, err := b.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := append([]byte{}, header...)
	want = append(want,
		SectionType, 0x04, 0x01, FuncTypeByte, 0x00, 0x00,
		SectionImport, 0x05, 0x01, 0x00, 0x00, KindFunc, 0x00,
		SectionStart, 0x01, 0x00,
	)
	if !bytes.Equal(got, want) {
		t.Errorf("got  % x\nwant % x", got, want)
	}
}

func TestBuilder_FuncIndexSpace(t *testing.T) {
	b := NewBuilder()
	ft := FuncType{Params: []ValType{ValI32}}
	a := b.ImportFunc("env", "a", ft)
	c := b.ImportFunc("env", "c", FuncType{})
	f := b.Func(ft, nil, NewCode().LocalGet(0).Call(a).End())
	g := b.Func(FuncType{}, nil, NewCode().Call(c).End())

	if a != 0 || c != 1 || f != 2 || g != 3 {
		t.Errorf("indices = %d %d %d %d, want 0 1 2 3", a, c, f, g)
	}

	m, err := b.Module()
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Types) != 2 {
		t.Errorf("types should be deduplicated, got %d", len(m.Types))
	}
}

func TestBuilder_ImportAfterFunc(t *testing.T) {
	b := NewBuilder()
	b.Func(FuncType{}, nil, NewCode().End())
	b.ImportFunc("env", "late", FuncType{})
	if _, err := b.Encode(); err == nil {
		t.Error("import after function should fail")
	}
}

func TestCode_Encoding(t *testing.T) {
	tests := []struct {
		name string
		code *Code
		want []byte
	}{
		{"ref.null extern", NewCode().RefNull(ValExtern).End(), []byte{OpRefNull, 0x6F, OpEnd}},
		{"i32.const -1", NewCode().I32Const(-1), []byte{OpI32Const, 0x7F}},
		{"i64.const 2^40", NewCode().I64Const(1 << 40), []byte{OpI64Const, 0x80, 0x80, 0x80, 0x80, 0x80, 0x20}},
		{"f32.const 1", NewCode().F32Const(1), []byte{OpF32Const, 0x00, 0x00, 0x80, 0x3F}},
		{"loop br", NewCode().Loop().Br(0).End(), []byte{OpLoop, BlockTypeEmpty, OpBr, 0x00, OpEnd}},
		{"call drop", NewCode().Call(300).Drop(), []byte{OpCall, 0xAC, 0x02, OpDrop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Bytes(); !bytes.Equal(got, tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
		})
	}
}
