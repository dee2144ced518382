package platform

import (
	"runtime"
	"testing"

	"github.com/samcharles93/cosine/internal/dtype"
	"github.com/samcharles93/cosine/internal/strategy"
)

func TestProfiles(t *testing.T) {
	std, ok := Lookup(Standard)
	if !ok {
		t.Fatalf("standard profile missing")
	}
	for _, dt := range []dtype.DType{dtype.F16, dtype.F32, dtype.BF16} {
		if !std.Supports(dt) {
			t.Fatalf("standard should support %v", dt)
		}
	}
	for _, k := range strategy.Kinds {
		if !std.Allows(k) {
			t.Fatalf("standard should allow %v", k)
		}
	}
	if std.ScratchMultiplier(dtype.F32) != 8 || std.ScratchMultiplier(dtype.BF16) != 16 {
		t.Fatalf("standard scratch %d/%d", std.ScratchMultiplier(dtype.F32), std.ScratchMultiplier(dtype.BF16))
	}

	con, ok := Lookup(Constrained)
	if !ok {
		t.Fatalf("constrained profile missing")
	}
	if con.Supports(dtype.BF16) || !con.Supports(dtype.F16) {
		t.Fatalf("constrained dtype set wrong: %v", con.DTypes)
	}
	if con.Allows(strategy.HighPrecision) || !con.Allows(strategy.Reference) {
		t.Fatalf("constrained strategies wrong: %v", con.Strategies)
	}
	if con.ScratchMultiplier(dtype.F32) != 6 || con.ScratchMultiplier(dtype.F16) != 12 {
		t.Fatalf("constrained scratch wrong")
	}
	if con.DownCast != dtype.RoundTruncate || std.DownCast != dtype.RoundNearestEven {
		t.Fatalf("down-cast modes wrong")
	}
}

func TestParseVariant(t *testing.T) {
	if v, err := ParseVariant(" Constrained "); err != nil || v != Constrained {
		t.Fatalf("ParseVariant: %v %v", v, err)
	}
	if _, err := ParseVariant("gpu"); err == nil {
		t.Fatalf("expected error")
	}
	vs := Variants()
	if len(vs) != 2 || vs[0] != Constrained || vs[1] != Standard {
		t.Fatalf("Variants()=%v", vs)
	}
}

func TestQuery(t *testing.T) {
	caps, err := Query(Standard, Overrides{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if caps.Units != runtime.GOMAXPROCS(0) || caps.FastMemoryBytes != 192*1024 {
		t.Fatalf("caps=%+v", caps)
	}
	caps, err = Query(Constrained, Overrides{FastMemoryBytes: 4096, Units: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if caps.Units != 3 || caps.FastMemoryBytes != 4096 || caps.Variant != Constrained {
		t.Fatalf("caps=%+v", caps)
	}
	if _, err := Query("tpu", Overrides{}); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
