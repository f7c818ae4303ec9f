package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePurgeInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    PurgeInterval
		wantErr bool
	}{
		{in: "never", want: PurgeNever},
		{in: "Weekly", want: PurgeWeekly},
		{in: "monthly", want: PurgeMonthly},
		{in: "7", want: 7},
		{in: "0", want: PurgeNever},
		{in: "30 days", want: 30},
		{in: "", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePurgeInterval(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPurgeInterval)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPurgeIntervalString(t *testing.T) {
	assert.Equal(t, "never", PurgeNever.String())
	assert.Equal(t, "weekly", PurgeWeekly.String())
	assert.Equal(t, "12 days", PurgeInterval(12).String())
	assert.True(t, PurgeNever.IsNever())
	assert.False(t, PurgeDaily.IsNever())
}

func TestTrashContainerSettings(t *testing.T) {
	_, ok := AsTrashContainer(&Node{TypeName: "Page"})
	assert.False(t, ok)

	c, ok := AsTrashContainer(&Node{TypeName: TrashContainerType})
	require.True(t, ok)

	assert.True(t, c.Enabled(), "enabled by default")
	assert.Equal(t, PurgeMonthly, c.PurgeInterval(), "monthly by default")

	c.SetEnabled(false)
	c.SetPurgeInterval(PurgeWeekly)
	assert.False(t, c.Enabled())
	assert.Equal(t, PurgeWeekly, c.PurgeInterval())
}

func TestTypeRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.True(t, r.IsThrowable("Page"), "unregistered types are throwable")
	assert.False(t, r.IsThrowable(TrashContainerType))
	assert.False(t, r.IsThrowable(RootType))

	r.Register(TypeDefinition{Name: "Page", Throwable: ThrowableYes})
	r.Register(TypeDefinition{Name: "Settings", Throwable: ThrowableNo})
	assert.True(t, r.IsThrowable("Page"))
	assert.False(t, r.IsThrowable("Settings"))

	def, ok := r.Definition("Settings")
	require.True(t, ok)
	assert.Equal(t, ThrowableNo, def.Throwable)
}
