package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheet struct {
	tabs      []string
	header    [][]string
	appended  [][]string
	valueCall int
	updates   int
	ranges    []string
	appendErr error
}

func (f *fakeSheet) EnsureSheet(_ context.Context, title string) error {
	for _, t := range f.tabs {
		if t == title {
			return nil
		}
	}
	f.tabs = append(f.tabs, title)
	return nil
}

func (f *fakeSheet) Values(_ context.Context, rng string) ([][]string, error) {
	f.valueCall++
	f.ranges = append(f.ranges, rng)
	return f.header, nil
}

func (f *fakeSheet) Update(_ context.Context, rng string, rows [][]string) error {
	f.updates++
	f.ranges = append(f.ranges, rng)
	f.header = rows
	return nil
}

func (f *fakeSheet) Append(_ context.Context, rng string, rows [][]string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.ranges = append(f.ranges, rng)
	f.appended = append(f.appended, rows...)
	return nil
}

func TestSheetAppender_WritesHeaderOnce(t *testing.T) {
	sheet := &fakeSheet{}
	a := NewSheetAppender(sheet, "주문")
	ctx := context.Background()

	rec := Record{Timestamp: "2024-03-01 09:30:00", Name: "Kim", Phone: "010", Address: "Seoul", Summary: "Kettle x2", Total: "20,000원"}
	require.NoError(t, a.Append(ctx, rec))
	require.NoError(t, a.Append(ctx, rec))

	assert.Equal(t, []string{"주문"}, sheet.tabs, "missing tab is created once")
	assert.Equal(t, 1, sheet.valueCall)
	assert.Equal(t, 1, sheet.updates)
	assert.Equal(t, [][]string{Header()}, sheet.header)
	require.Len(t, sheet.appended, 2)
	assert.Equal(t, rec.Row(), sheet.appended[0])
	assert.Equal(t, "'주문'!A1:F1", sheet.ranges[0])
	assert.Equal(t, "'주문'!A1", sheet.ranges[len(sheet.ranges)-1])
}

func TestSheetAppender_KeepsExistingHeader(t *testing.T) {
	sheet := &fakeSheet{tabs: []string{"Orders 2024"}, header: [][]string{{"time", "who"}}}
	a := NewSheetAppender(sheet, "Orders 2024")

	require.NoError(t, a.Append(context.Background(), Record{}))
	assert.Equal(t, 0, sheet.updates)
	assert.Equal(t, []string{"Orders 2024"}, sheet.tabs)
	assert.Equal(t, "'Orders 2024'!A1:F1", sheet.ranges[0])
}

func TestSheetAppender_AppendError(t *testing.T) {
	cause := errors.New("quota")
	sheet := &fakeSheet{appendErr: cause}
	a := NewSheetAppender(sheet, "o'brien")

	err := a.Append(context.Background(), Record{})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "'o''brien'!A1:F1", sheet.ranges[0])
}
