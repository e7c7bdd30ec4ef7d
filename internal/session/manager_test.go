package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpbot/internal/domain"
)

func TestAppendAndHistory(t *testing.T) {
	m := NewManager(10)
	m.AppendUser("u1", "hello")
	m.AppendAssistant("u1", "hi there")

	history := m.History("u1")
	require.Len(t, history, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Content: "hello"}, history[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "hi there"}, history[1])
}

func TestTruncationKeepsMostRecent(t *testing.T) {
	m := NewManager(10)
	for i := 0; i < 6; i++ {
		m.AppendUser("u1", fmt.Sprintf("question %d", i))
		m.AppendAssistant("u1", fmt.Sprintf("answer %d", i))
	}

	history := m.History("u1")
	require.Len(t, history, 10)
	// 12 appended, the oldest exchange dropped.
	assert.Equal(t, "question 1", history[0].Content)
	assert.Equal(t, "answer 5", history[9].Content)
}

func TestResetThenAppend(t *testing.T) {
	m := NewManager(10)
	m.AppendUser("u1", "one")
	m.AppendAssistant("u1", "two")
	m.Reset("u1")

	assert.Empty(t, m.History("u1"))

	m.AppendUser("u1", "fresh start")
	history := m.History("u1")
	require.Len(t, history, 1)
	assert.Equal(t, "fresh start", history[0].Content)
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(10)
	m.AppendUser("u1", "from u1")
	m.AppendUser("u2", "from u2")
	m.Reset("u1")

	assert.Empty(t, m.History("u1"))
	require.Len(t, m.History("u2"), 1)
}

func TestConcurrentAppendsStayBounded(t *testing.T) {
	m := NewManager(10)
	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2"} {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(user string, i int) {
				defer wg.Done()
				m.AppendUser(user, fmt.Sprintf("msg %d", i))
			}(user, i)
		}
	}
	wg.Wait()

	assert.Len(t, m.History("u1"), 10)
	assert.Len(t, m.History("u2"), 10)
}

func TestHistoryReturnsCopy(t *testing.T) {
	m := NewManager(10)
	m.AppendUser("u1", "original")
	history := m.History("u1")
	history[0].Content = "mutated"

	assert.Equal(t, "original", m.History("u1")[0].Content)
}
