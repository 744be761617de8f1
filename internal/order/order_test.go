package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_Validate(t *testing.T) {
	f := Form{Name: " Kim ", Phone: "\t010\n", Address: "Seoul"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Kim", f.Name)
	assert.Equal(t, "010", f.Phone)

	empty := Form{Phone: "   "}
	err := empty.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 3)
	assert.Equal(t, "order form is incomplete: address, name, phone", err.Error())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "", Summarize(nil))
	got := Summarize([]Item{{Name: "Kettle", Quantity: 2}, {Name: "Steam Iron", Quantity: 1}})
	assert.Equal(t, "Kettle x2, Steam Iron x1", got)
}
