package opening

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardSourceAlwaysStartPos(t *testing.T) {
	var s Source = StandardSource{}
	o := s.Next(7)
	assert.Equal(t, 7, o.ID)
	assert.Empty(t, o.FEN)
	assert.Empty(t, o.Moves)
}
