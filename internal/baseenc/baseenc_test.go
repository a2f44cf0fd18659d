package baseenc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0xff, 0xfe, 0xfd, 0xfc, 0xfb},
		[]byte("hello, carrier"),
	}
	for _, data := range cases {
		text := Encode(data)
		got, err := Decode(text)
		if err != nil {
			t.Fatalf("Decode(%q): %v", text, err)
		}
		if len(data) == 0 && len(got) == 0 {
			continue
		}
		if diff := cmp.Diff(data, got); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEncodeIsUnpadded(t *testing.T) {
	text := Encode([]byte("x"))
	for _, r := range text {
		if r == '=' {
			t.Fatalf("expected no padding in %q", text)
		}
	}
}

func TestDecodeRejectsInvalidText(t *testing.T) {
	if _, err := Decode("not valid base32!!"); err == nil {
		t.Fatal("expected an error for invalid base32 text")
	}
}
