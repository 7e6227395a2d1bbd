package testkit

import "testing"

func TestSwapRestores(t *testing.T) {
	v := 1
	t.Run("inner", func(t *testing.T) {
		Swap(t, &v, 2)
		if v != 2 {
			t.Fatalf("swap did not apply, v=%d", v)
		}
	})
	if v != 1 {
		t.Fatalf("swap not restored, v=%d", v)
	}
}

func TestMustPanic(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
}
