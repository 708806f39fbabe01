package binutil_test

import (
	"bytes"
	"testing"

	"github.com/icza/ipf/binutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedStringPadsWithNUL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binutil.WriteFixedString(&buf, "hello", 8))
	assert.Equal(t, []byte("hello\x00\x00\x00"), buf.Bytes())
}

func TestFixedStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	err := binutil.WriteFixedString(&buf, "toolong", 3)
	assert.Error(t, err)
}

func TestXoredFixedStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binutil.WriteXoredFixedString(&buf, "abc", 6))

	got, err := binutil.ReadXoredFixedString(bytes.NewReader(buf.Bytes()), 6)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestXoredLPStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binutil.WriteXoredLPString(&buf, "foo"))

	got, err := binutil.ReadXoredLPString(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "foo", got)
}

func TestXoredLPStringEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binutil.WriteXoredLPString(&buf, ""))

	got, err := binutil.ReadXoredLPString(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binutil.WriteUint32(&buf, 0xDEADBEEF))
	require.NoError(t, binutil.WriteUint16(&buf, 0x1234))

	r := bytes.NewReader(buf.Bytes())
	v32, err := binutil.ReadUint32(r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	v16, err := binutil.ReadUint16(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)
}
