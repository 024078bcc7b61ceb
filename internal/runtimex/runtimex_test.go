package runtimex

import (
	"errors"
	"testing"
)

func TestPanicOnError(t *testing.T) {
	badfunc := func(in error) (out error) {
		defer func() {
			out = recover().(error)
		}()
		PanicOnError(in, "antani failed")
		return
	}

	t.Run("error is nil", func(t *testing.T) {
		PanicOnError(nil, "antani failed") // should not panic
	})

	t.Run("error is not nil", func(t *testing.T) {
		expected := errors.New("mocked error")
		if !errors.Is(badfunc(expected), expected) {
			t.Fatal("not the error we expected")
		}
	})
}

func TestAssert(t *testing.T) {
	badfunc := func(in bool, message string) (out error) {
		defer func() {
			out = recover().(error)
		}()
		Assert(in, message)
		return
	}

	t.Run("assertion is true", func(t *testing.T) {
		Assert(true, "antani failed") // should not panic
	})

	t.Run("assertion is false", func(t *testing.T) {
		message := "mocked error"
		err := badfunc(false, message)
		if err == nil || err.Error() != message {
			t.Fatal("not the error we expected", err)
		}
	})
}

func TestTry(t *testing.T) {
	t.Run("Try0 with nil error", func(t *testing.T) {
		Try0(nil)
	})

	t.Run("Try1 returns the value", func(t *testing.T) {
		if v := Try1(17, nil); v != 17 {
			t.Fatal("unexpected value", v)
		}
	})

	t.Run("Try1 panics on error", func(t *testing.T) {
		expected := errors.New("mocked error")
		var got error
		func() {
			defer func() {
				got = recover().(error)
			}()
			Try1(17, expected)
		}()
		if !errors.Is(got, expected) {
			t.Fatal("not the error we expected", got)
		}
	})

	t.Run("Try2 returns the values", func(t *testing.T) {
		a, b := Try2("a", 2, nil)
		if a != "a" || b != 2 {
			t.Fatal("unexpected values", a, b)
		}
	})
}
