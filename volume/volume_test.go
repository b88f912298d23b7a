package volume

import "testing"

func TestAddMulScale(t *testing.T) {
	a := Volume{1, 2, 3, 4, 5, 6, 7, 8}
	b := Unit().Scale(2)

	sum := a.Add(b)
	for i, want := range [Bands]float32{3, 4, 5, 6, 7, 8, 9, 10} {
		if sum[i] != want {
			t.Fatalf("Add lane %d = %f, want %f", i, sum[i], want)
		}
	}

	prod := a.Mul(b)
	for i := range prod {
		if prod[i] != a[i]*2 {
			t.Fatalf("Mul lane %d = %f, want %f", i, prod[i], a[i]*2)
		}
	}
}

func TestNegateSumMaxAbs(t *testing.T) {
	a := Volume{1, -2, 3, -4, 5, -6, 7, -8}
	neg := a.Negate()
	for i := range neg {
		if neg[i] != -a[i] {
			t.Fatalf("Negate lane %d = %f, want %f", i, neg[i], -a[i])
		}
	}

	if got, want := a.Sum(), float32(-4); got != want {
		t.Fatalf("Sum() = %f, want %f", got, want)
	}

	if got, want := a.MaxAbs(), float32(8); got != want {
		t.Fatalf("MaxAbs() = %f, want %f", got, want)
	}
}

func TestInRange01(t *testing.T) {
	if !Zero().InRange01() {
		t.Fatalf("Zero() should be in range")
	}
	if !Unit().InRange01() {
		t.Fatalf("Unit() should be in range")
	}
	bad := Volume{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 1.1}
	if bad.InRange01() {
		t.Fatalf("expected out-of-range lane to fail InRange01")
	}
}
