package model_test

import (
	"testing"

	"github.com/mosip/claim169-go/model"
)

func TestClampBestQualityFingers(t *testing.T) {
	t.Run("drops values outside 0..10, preserves order", func(t *testing.T) {
		got := model.ClampBestQualityFingers([]int{3, 11, -1, 0, 10, 99, 7})
		want := []int{3, 0, 10, 7}

		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
			}
		}
	})

	t.Run("nil input yields nil", func(t *testing.T) {
		if got := model.ClampBestQualityFingers(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestDecodeBiometricSubFormat(t *testing.T) {
	t.Run("known image sub-format", func(t *testing.T) {
		sf := model.DecodeBiometricSubFormat(model.BiometricFormatImage, int64(model.ImageSubFormatJPEG))
		if sf.Kind() != model.SubFormatImage {
			t.Fatalf("expected SubFormatImage, got %v", sf.Kind())
		}
		v, ok := sf.Image()
		if !ok || v != model.ImageSubFormatJPEG {
			t.Errorf("expected JPEG, got %v (ok=%v)", v, ok)
		}
	})

	t.Run("vendor range falls back to raw", func(t *testing.T) {
		sf := model.DecodeBiometricSubFormat(model.BiometricFormatImage, 150)
		if sf.Kind() != model.SubFormatRaw {
			t.Fatalf("expected SubFormatRaw for vendor range, got %v", sf.Kind())
		}
		if sf.Raw() != 150 {
			t.Errorf("expected raw value 150, got %d", sf.Raw())
		}
	})

	t.Run("unknown combination falls back to raw, never dropped", func(t *testing.T) {
		sf := model.DecodeBiometricSubFormat(model.BiometricFormatSound, 99)
		if sf.Kind() != model.SubFormatRaw {
			t.Fatalf("expected SubFormatRaw, got %v", sf.Kind())
		}
		if sf.Raw() != 99 {
			t.Errorf("expected raw value preserved, got %d", sf.Raw())
		}
	})
}

func TestX5UIsHTTPS(t *testing.T) {
	cases := []struct {
		uri  string
		want bool
	}{
		{"https://example.com/cert.pem", true},
		{"HTTPS://EXAMPLE.COM/cert.pem", true},
		{"http://example.com/cert.pem", false},
		{"ftp://example.com/cert.pem", false},
		{"", false},
	}

	for _, c := range cases {
		if got := model.X5UIsHTTPS(c.uri); got != c.want {
			t.Errorf("X5UIsHTTPS(%q) = %v, want %v", c.uri, got, c.want)
		}
	}
}

func TestRecognizedHashLength(t *testing.T) {
	t.Run("recognized SHA-256", func(t *testing.T) {
		n, ok := model.RecognizedHashLength("-16")
		if !ok || n != 32 {
			t.Errorf("expected (32, true), got (%d, %v)", n, ok)
		}
	})

	t.Run("unrecognized algorithm is not enforced", func(t *testing.T) {
		_, ok := model.RecognizedHashLength("sha3-256")
		if ok {
			t.Error("expected unrecognized algorithm to report false")
		}
	})
}
