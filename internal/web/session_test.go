package web

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionVisitCapsHistory(t *testing.T) {
	sess := &session{}
	for i := range historyLimit + 5 {
		sess.visit(fmt.Sprintf("g-%d", i))
	}
	assert.Len(t, sess.history, historyLimit)
	assert.Equal(t, fmt.Sprintf("g-%d", historyLimit+4), sess.history[0])

	sess.visit("g-7")
	assert.Len(t, sess.history, historyLimit)
	assert.Equal(t, "g-7", sess.history[0])
	assert.Equal(t, 1, countOf(sess.history, "g-7"))
}

func countOf(ids []string, want string) int {
	n := 0
	for _, id := range ids {
		if id == want {
			n++
		}
	}
	return n
}
