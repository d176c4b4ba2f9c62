package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationID_Deterministic(t *testing.T) {
	params := Record{"accountTag": "us", "smsMessage": 1}
	id1, err := InvocationID("SendSMS", 0, params)
	require.NoError(t, err)
	id2, err := InvocationID("SendSMS", 0, Record{"smsMessage": int64(1), "accountTag": "us"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestInvocationID_DistinguishesInputs(t *testing.T) {
	params := Record{"a": 1}
	base := MustInvocationID("S", 0, params)

	assert.NotEqual(t, base, MustInvocationID("T", 0, params))
	assert.NotEqual(t, base, MustInvocationID("S", 1, params))
	assert.NotEqual(t, base, MustInvocationID("S", 0, Record{"a": 2}))
}

func TestInvocationID_EmptyRecord(t *testing.T) {
	assert.Equal(t, MustInvocationID("S", 0, nil), MustInvocationID("S", 0, Record{}))
}

func TestRecordHash_DomainSeparated(t *testing.T) {
	h, err := RecordHash(Record{})
	require.NoError(t, err)
	assert.NotEqual(t, MustInvocationID("", 0, Record{}), h)
}

func TestMustInvocationID_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustInvocationID("S", 0, Record{"bad": func() {}})
	})
}
