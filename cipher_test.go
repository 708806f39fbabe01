package ipf

import (
	"bytes"
	"testing"
)

func TestCipherInvolution(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0xAB}, 257),
	}

	for _, data := range cases {
		enc := pkEncrypt(data)
		dec := pkDecrypt(enc)
		if !bytes.Equal(dec, data) {
			t.Fatalf("decrypt(encrypt(%v)) = %v, want %v", data, dec, data)
		}

		dec2 := pkDecrypt(data)
		enc2 := pkEncrypt(dec2)
		if !bytes.Equal(enc2, data) {
			t.Fatalf("encrypt(decrypt(%v)) = %v, want %v", data, enc2, data)
		}
	}
}

func TestCipherOddBytesPassThrough(t *testing.T) {
	data := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	enc := pkEncrypt(data)

	for i := 1; i < len(data); i += 2 {
		if enc[i] != data[i] {
			t.Fatalf("odd index %d: got %#x, want unchanged %#x", i, enc[i], data[i])
		}
	}
}

func TestCipherDoesNotMutateInput(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	orig := append([]byte(nil), data...)
	pkEncrypt(data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("pkEncrypt mutated its input: got %v, want %v", data, orig)
	}
}
