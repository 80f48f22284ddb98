package reedsolomon

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func encodeBlock(data []byte, eccLen int) []byte {
	ecc := ComputeRemainder(data, ComputeDivisor(eccLen))
	block := append([]byte(nil), data...)
	return append(block, ecc...)
}

func TestFieldTables(t *testing.T) {
	f := QRCodeField256
	if f.Exp(0) != 1 || f.Exp(1) != 2 || f.Exp(8) != 0x1D {
		t.Errorf("exp table: %d %d %d", f.Exp(0), f.Exp(1), f.Exp(8))
	}
	if f.Exp(255) != 1 {
		t.Errorf("alpha^255 = %d, want 1", f.Exp(255))
	}
	for a := 1; a < 256; a++ {
		if f.Exp(f.Log(a)) != a {
			t.Fatalf("exp(log(%d)) != %d", a, a)
		}
		if f.Multiply(a, f.Inverse(a)) != 1 {
			t.Fatalf("%d * inverse(%d) != 1", a, a)
		}
	}
	if f.Multiply(0, 7) != 0 || f.Divide(0, 7) != 0 {
		t.Error("zero should absorb")
	}
}

func TestFieldZeroPanics(t *testing.T) {
	f := QRCodeField256
	tests := []struct {
		name string
		call func()
	}{
		{"Log", func() { f.Log(0) }},
		{"Inverse", func() { f.Inverse(0) }},
		{"Divide", func() { f.Divide(3, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s of zero did not panic", tt.name)
				}
			}()
			tt.call()
		})
	}
}

func TestPolyDerivative(t *testing.T) {
	f := QRCodeField256
	// 3x^3 + 5x^2 + 7x + 9 -> 3x^2 + 7 in characteristic 2.
	p := f.NewPoly([]int{3, 5, 7, 9})
	d := p.Derivative()
	if d.Degree() != 2 || d.Coefficient(2) != 3 || d.Coefficient(1) != 0 || d.Coefficient(0) != 7 {
		t.Errorf("derivative = %v", d.Coefficients())
	}
	if tr := p.Truncate(2); tr.Degree() != 1 || tr.Coefficient(1) != 7 || tr.Coefficient(0) != 9 {
		t.Errorf("truncate = %v", tr.Coefficients())
	}
}

func TestPolyDivide(t *testing.T) {
	f := QRCodeField256
	a := f.NewPoly([]int{1, 2, 3, 4, 5})
	b := f.NewPoly([]int{7, 1, 9})
	q, r := a.Divide(b)
	if got := q.Multiply(b).AddOrSubtract(r); !equalCoeffs(got.Coefficients(), a.Coefficients()) {
		t.Errorf("q*b+r = %v, want %v", got.Coefficients(), a.Coefficients())
	}
	if r.Degree() >= b.Degree() {
		t.Errorf("remainder degree %d", r.Degree())
	}
}

func equalCoeffs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestComputeRemainderKnownVector(t *testing.T) {
	// Version 1-M encoding of "01234567".
	data := []byte{0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11}
	want := []byte{0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55}
	got := ComputeRemainder(data, ComputeDivisor(10))
	if !bytes.Equal(got, want) {
		t.Errorf("ecc = % x, want % x", got, want)
	}
}

func TestDivisorDegree(t *testing.T) {
	for _, n := range []int{1, 7, 10, 30, 68} {
		if got := len(ComputeDivisor(n)); got != n {
			t.Errorf("len(ComputeDivisor(%d)) = %d", n, got)
		}
	}
	if ComputeDivisor(0) != nil {
		t.Error("zero-degree divisor should be nil")
	}
}

func TestDecodeNoErrors(t *testing.T) {
	block := encodeBlock([]byte{10, 20, 30, 40, 50}, 4)
	orig := append([]byte(nil), block...)
	n, err := TryCorrectInPlace(block, 4)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if n != 0 {
		t.Errorf("corrected = %d, want 0", n)
	}
	if !bytes.Equal(block, orig) {
		t.Error("clean block modified")
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, tc := range []struct{ data, ecc int }{{10, 7}, {16, 10}, {19, 7}, {34, 10}, {97, 30}, {15, 26}, {3, 2}} {
		data := make([]byte, tc.data)
		rng.Read(data)
		clean := encodeBlock(data, tc.ecc)
		for trial := 0; trial < 20; trial++ {
			block := append([]byte(nil), clean...)
			numErrors := tc.ecc / 2
			for _, pos := range rng.Perm(len(block))[:numErrors] {
				block[pos] ^= byte(1 + rng.Intn(255))
			}
			n, err := TryCorrectInPlace(block, tc.ecc)
			if err != nil {
				t.Fatalf("%d+%d trial %d: %v", tc.data, tc.ecc, trial, err)
			}
			if n != numErrors {
				t.Errorf("%d+%d trial %d: corrected %d, want %d", tc.data, tc.ecc, trial, n, numErrors)
			}
			if !bytes.Equal(block, clean) {
				t.Fatalf("%d+%d trial %d: block not restored", tc.data, tc.ecc, trial)
			}
		}
	}
}

func TestDecodeTooManyErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	clean := encodeBlock([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	failures := 0
	for trial := 0; trial < 50; trial++ {
		block := append([]byte(nil), clean...)
		for _, pos := range rng.Perm(len(block))[:4] {
			block[pos] ^= byte(1 + rng.Intn(255))
		}
		corrupted := append([]byte(nil), block...)
		if _, err := TryCorrectInPlace(block, 4); err != nil {
			failures++
			if !errors.Is(err, ErrReedSolomon) {
				t.Errorf("err = %v, want ErrReedSolomon", err)
			}
			if !bytes.Equal(block, corrupted) {
				t.Error("failed decode modified the block")
			}
		} else if bytes.Equal(block, clean) {
			t.Error("four errors corrected with four ecc codewords")
		}
	}
	if failures == 0 {
		t.Error("expected at least one uncorrectable block")
	}
}

func TestDecodeRejectsBadShape(t *testing.T) {
	if _, err := TryCorrectInPlace([]byte{1, 2}, 3); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("err = %v", err)
	}
	if _, err := TryCorrectInPlace(make([]byte, 256), 10); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("err = %v", err)
	}
}

func TestNonZeroGeneratorBase(t *testing.T) {
	f := NewField(0x011D, 1)
	enc := NewEncoder(f)
	data := []byte{0x40, 0x11, 0x22, 0x33, 0x44}
	block := append(append([]byte(nil), data...), enc.Remainder(data, enc.Divisor(6))...)
	clean := append([]byte(nil), block...)
	block[0] ^= 0x55
	block[4] ^= 0x01
	block[9] ^= 0xFF
	n, err := NewDecoder(f).Decode(block, 6)
	if err != nil || n != 3 {
		t.Fatalf("Decode = %d, %v", n, err)
	}
	if !bytes.Equal(block, clean) {
		t.Error("block not restored")
	}
}

func TestEncoderIntForm(t *testing.T) {
	data := []byte{0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11}
	ints := make([]int, len(data)+10)
	for i, b := range data {
		ints[i] = int(b)
	}
	if err := NewEncoder(QRCodeField256).Encode(ints, 10); err != nil {
		t.Fatal(err)
	}
	want := ComputeRemainder(data, ComputeDivisor(10))
	for i, b := range want {
		if ints[len(data)+i] != int(b) {
			t.Errorf("ecc[%d] = %#x, want %#x", i, ints[len(data)+i], b)
		}
	}
	if err := NewEncoder(QRCodeField256).Encode([]int{1, 2}, 2); !errors.Is(err, ErrReedSolomon) {
		t.Errorf("err = %v", err)
	}
}
