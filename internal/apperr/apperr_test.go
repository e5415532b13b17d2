package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"cardkeep/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	wrapped := fmt.Errorf("deck %q: %w", "Deck1", apperr.ErrNotFound)
	assert.Equal(t, apperr.ErrNotFound, apperr.Kind(wrapped))

	doubleWrapped := fmt.Errorf("get deck: %w", wrapped)
	assert.Equal(t, apperr.ErrNotFound, apperr.Kind(doubleWrapped))

	assert.Nil(t, apperr.Kind(errors.New("boom")))
	assert.Nil(t, apperr.Kind(nil))
}
