package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycdash/screengate/app/enum"
)

func TestStore_AuditLog(t *testing.T) {
	ctx := context.Background()

	t.Run("log and query", func(t *testing.T) {
		st, err := New(":memory:")
		require.NoError(t, err)
		defer st.Close()

		now := time.Now()
		entries := []AuditEntry{
			{Timestamp: now.Add(-2 * time.Hour), Route: "customers.get", Action: enum.AuditActionRead, Method: "GET", Path: "/api/customers/1",
				Actor: "tok1****", ActorType: enum.ActorTypeSession, Result: enum.AuditResultSuccess, Status: 200,
				DurationMS: 35, IP: "192.168.1.1", UserAgent: "test/1.0", RequestID: "r-1"},
			{Timestamp: now.Add(-1 * time.Hour), Route: "customers.update", Action: enum.AuditActionUpdate, Method: "PUT", Path: "/api/customers/1",
				Actor: "tok1****", ActorType: enum.ActorTypeSession, Result: enum.AuditResultSuccess, Status: 200},
			{Timestamp: now, Action: enum.AuditActionRead, Method: "GET", Path: "/api/screening/logs",
				Actor: "anonymous", ActorType: enum.ActorTypePublic, Result: enum.AuditResultDenied, Status: 401},
		}
		for _, e := range entries {
			require.NoError(t, st.LogAudit(ctx, e))
		}

		results, total, err := st.QueryAudit(ctx, AuditQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, results, 3)
		assert.Equal(t, "/api/screening/logs", results[0].Path, "newest first")
		oldest := results[2]
		assert.Equal(t, "192.168.1.1", oldest.IP)
		assert.Equal(t, "test/1.0", oldest.UserAgent)
		assert.Equal(t, "r-1", oldest.RequestID)
		assert.Equal(t, int64(35), oldest.DurationMS)
		assert.Equal(t, "GET", oldest.Method)
		assert.Equal(t, "customers.get", oldest.Route)
		assert.Empty(t, results[0].Route, "unrouted entry")

		_, total, err = st.QueryAudit(ctx, AuditQuery{Route: "customers.*"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		results, total, err = st.QueryAudit(ctx, AuditQuery{Route: "customers.update"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, results, 1)
		assert.Equal(t, "PUT", results[0].Method)

		results, total, err = st.QueryAudit(ctx, AuditQuery{Path: "/api/customers/*"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, results, 2)

		_, total, err = st.QueryAudit(ctx, AuditQuery{Path: "/api/screening/logs"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = st.QueryAudit(ctx, AuditQuery{Actor: "tok1****"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = st.QueryAudit(ctx, AuditQuery{ActorType: enum.ActorTypePublic})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = st.QueryAudit(ctx, AuditQuery{Action: enum.AuditActionRead})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = st.QueryAudit(ctx, AuditQuery{Result: enum.AuditResultDenied})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = st.QueryAudit(ctx, AuditQuery{From: now.Add(-90 * time.Minute), To: now.Add(time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("pagination", func(t *testing.T) {
		st, err := New(":memory:")
		require.NoError(t, err)
		defer st.Close()

		now := time.Now()
		for i := range 10 {
			require.NoError(t, st.LogAudit(ctx, AuditEntry{Timestamp: now.Add(time.Duration(i) * time.Second),
				Action: enum.AuditActionRead, Path: "/api/products", Actor: "anonymous",
				ActorType: enum.ActorTypePublic, Result: enum.AuditResultSuccess, Status: 200}))
		}

		results, total, err := st.QueryAudit(ctx, AuditQuery{Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 10, total)
		assert.Len(t, results, 3)

		results, total, err = st.QueryAudit(ctx, AuditQuery{Limit: 3, Offset: 9})
		require.NoError(t, err)
		assert.Equal(t, 10, total)
		assert.Len(t, results, 1)
	})

	t.Run("filters combine", func(t *testing.T) {
		st, err := New(":memory:")
		require.NoError(t, err)
		defer st.Close()

		now := time.Now()
		for i, route := range []string{"goaml.reports", "goaml.reports", "screening.logs"} {
			result := enum.AuditResultSuccess
			if i == 1 {
				result = enum.AuditResultFailed
			}
			require.NoError(t, st.LogAudit(ctx, AuditEntry{Timestamp: now, Route: route, Action: enum.AuditActionRead,
				Path: "/api/" + route, Actor: "anonymous", ActorType: enum.ActorTypePublic, Result: result}))
		}

		_, total, err := st.QueryAudit(ctx, AuditQuery{Route: "goaml.*", Result: enum.AuditResultSuccess})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("delete older than", func(t *testing.T) {
		st, err := New(":memory:")
		require.NoError(t, err)
		defer st.Close()

		now := time.Now()
		for _, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, time.Hour} {
			require.NoError(t, st.LogAudit(ctx, AuditEntry{Timestamp: now.Add(-age), Action: enum.AuditActionRead,
				Path: "/api/products", Actor: "anonymous", ActorType: enum.ActorTypePublic,
				Result: enum.AuditResultSuccess}))
		}

		deleted, err := st.DeleteAuditOlderThan(ctx, now.Add(-90*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		_, total, err := st.QueryAudit(ctx, AuditQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})
}
