package loader

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFromBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content []byte
		wantErr bool
	}{
		{name: "valid script", content: []byte("1+2")},
		{name: "empty content", content: nil, wantErr: true},
		{name: "whitespace only", content: []byte(" \n\t "), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := NewFromBytes(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, ErrScriptNotAvailable)
				require.Nil(t, l)
				return
			}
			require.NoError(t, err)

			reader, err := l.GetReader()
			require.NoError(t, err)
			content, err := io.ReadAll(reader)
			require.NoError(t, err)
			require.NoError(t, reader.Close())
			require.Equal(t, tt.content, content)

			require.NotNil(t, l.GetSourceURL())
			require.Equal(t, "bytes", l.GetSourceURL().Scheme)
			require.Contains(t, l.String(), "loader.FromBytes")
		})
	}
}
