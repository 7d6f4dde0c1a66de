package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmsgate/pkg/models"
)

func sampleConnector(id string) *models.ConnectorConfig {
	return &models.ConnectorConfig{
		ID:          id,
		Name:        "HQ",
		Type:        models.DeploymentCloud,
		Credentials: models.Credentials{Username: "admin", Password: "secret"},
		Cloud:       &models.CloudConfig{SelectedSystemID: "sys1"},
		Token: &models.Token{
			AccessToken:  "tok",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
			Scope:        "cloudSystemId=sys1",
		},
	}
}

// Both implementations must behave identically; run the same suite over
// each.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "vmsgate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleConnector("c1")
			require.NoError(t, st.Save(ctx, in))

			out, err := st.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, in, out)
			require.NotNil(t, out.Token)
			assert.Equal(t, "refresh", out.Token.RefreshToken)
		})
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Load(context.Background(), "ghost")
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindNotFound))
		})
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Save(ctx, sampleConnector("c1")))

			updated := sampleConnector("c1")
			updated.Token = &models.Token{AccessToken: "tok-2", ExpiresAt: time.Now().Add(2 * time.Hour).UnixMilli()}
			require.NoError(t, st.Save(ctx, updated))

			out, err := st.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, "tok-2", out.Token.AccessToken)
			assert.Empty(t, out.Token.RefreshToken, "the whole document is replaced, not merged")
		})
	}
}

func TestDelete(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Save(ctx, sampleConnector("c1")))
			require.NoError(t, st.Delete(ctx, "c1"))

			_, err := st.Load(ctx, "c1")
			assert.True(t, models.IsKind(err, models.KindNotFound))

			err = st.Delete(ctx, "c1")
			assert.True(t, models.IsKind(err, models.KindNotFound))
		})
	}
}

func TestListOrderedByID(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"c3", "c1", "c2"} {
				require.NoError(t, st.Save(ctx, sampleConnector(id)))
			}
			out, err := st.List(ctx)
			require.NoError(t, err)
			require.Len(t, out, 3)
			assert.Equal(t, "c1", out[0].ID)
			assert.Equal(t, "c2", out[1].ID)
			assert.Equal(t, "c3", out[2].ID)
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmsgate.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, sampleConnector("c1")))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	out, err := st.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "tok", out.Token.AccessToken)
}
