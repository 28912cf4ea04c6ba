package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/intake/internal/core/domain"
	"github.com/custodia-labs/intake/internal/core/ports/driven"
)

// testURLEnv names the database used by these tests. The tests truncate
// the documents table, so point it at a scratch database.
const testURLEnv = "INTAKE_TEST_POSTGRES_URL"

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv(testURLEnv)
	if url == "" {
		t.Skipf("%s not set", testURLEnv)
	}

	store, err := NewStore(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	_, err = store.db.Exec(`TRUNCATE documents CASCADE`)
	require.NoError(t, err)
	return store
}

func TestDocumentStore_Contract(t *testing.T) {
	storetest.RunDocumentStoreSuite(t, func(t *testing.T) driven.DocumentStore {
		return setupTestStore(t).DocumentStore()
	})
}

func TestNewStore_RequiresURL(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
}
