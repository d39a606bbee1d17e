package vstp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLoadMissingFileIsNotFatal(t *testing.T) {
	s := LoadState(filepath.Join(t.TempDir(), "does-not-exist.json"), zerolog.Nop())
	assert.Empty(t, s.All())
}

func TestStatePersistAndReload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "vstp-state.json")
	s := LoadState(file, zerolog.Nop())

	msg, err := Decode([]byte(sampleMessage))
	require.NoError(t, err)
	s.Record(msg)

	require.NoError(t, s.Persist())

	_, err = os.Stat(file)
	require.NoError(t, err)
	_, err = os.Stat(file + ".bak")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away, not left behind")

	reloaded := LoadState(file, zerolog.Nop())
	all := reloaded.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Z12345", all[0].Message.CIFMsgV1.Schedule.CIFTrainUID)
	assert.NotEmpty(t, all[0].SnapshotID)
}

func TestStateReplaceCompactsStoredSet(t *testing.T) {
	s := LoadState("", zerolog.Nop())
	msg, err := Decode([]byte(sampleMessage))
	require.NoError(t, err)
	s.Record(msg)
	s.Record(msg)
	require.Len(t, s.All(), 2)

	s.Replace(s.All()[:1])
	assert.Len(t, s.All(), 1)
}

func TestStatePersistWithoutFilenameIsNoop(t *testing.T) {
	s := LoadState("", zerolog.Nop())
	assert.NoError(t, s.Persist())
}
