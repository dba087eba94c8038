package blob

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func pngPayload() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
}

func jpegPayload() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 64)...)
}

func TestSniffImage_AllowedTypes(t *testing.T) {
	ct, err := SniffImage(pngPayload())
	if err != nil {
		t.Fatalf("png rejected: %v", err)
	}
	if ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}

	ct, err = SniffImage(jpegPayload())
	if err != nil {
		t.Fatalf("jpeg rejected: %v", err)
	}
	if ct != "image/jpeg" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestSniffImage_DisallowedType(t *testing.T) {
	gif := append([]byte("GIF89a"), make([]byte, 32)...)
	_, err := SniffImage(gif)
	ve, ok := common.AsValidationError(err)
	if !ok || ve.Field != "avatar" {
		t.Fatalf("want avatar validation error, got %v", err)
	}

	_, err = SniffImage([]byte("%PDF-1.4 not an image"))
	if err == nil {
		t.Fatal("non-image payload must be rejected")
	}
}

func TestSniffImage_SizeCap(t *testing.T) {
	big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, MaxAvatarBytes)...)
	if _, err := SniffImage(big); err == nil {
		t.Fatal("oversized payload must be rejected")
	}
}

func TestSniffImage_Empty(t *testing.T) {
	if _, err := SniffImage(nil); err == nil {
		t.Fatal("empty payload must be rejected")
	}
}

func TestNewObjectKey(t *testing.T) {
	a := NewObjectKey()
	b := NewObjectKey()
	if !strings.HasPrefix(a, "avatars/") {
		t.Fatalf("unexpected key %q", a)
	}
	if a == b {
		t.Fatal("keys must be unique")
	}
}
