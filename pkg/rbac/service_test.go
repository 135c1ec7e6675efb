package rbac

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := filepath.Join("testdata")
	svc, err := NewService(Config{
		ModelPath:  filepath.Join(root, "model.conf"),
		PolicyPath: filepath.Join(root, "policy.csv"),
	})
	require.NoError(t, err)
	return svc
}

func TestServiceAuthorize(t *testing.T) {
	svc := newTestService(t)
	req := NewRequest(
		SubjectForRole("sales"),
		ObjectName("crm", "customers"),
		NormalizeAction("edit"),
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceAuthorizeDenied(t *testing.T) {
	svc := newTestService(t)
	req := NewRequest(
		SubjectForRole("support"),
		ObjectName("crm", "customers"),
		NormalizeAction("edit"),
	)
	err := svc.Authorize(context.Background(), req)
	require.Error(t, err)
}

func TestServiceWildcardRole(t *testing.T) {
	svc := newTestService(t)
	req := NewRequest(
		SubjectForRole("admin"),
		ObjectName("crm", "targets"),
		NormalizeAction("set"),
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceUnknownRoleDenied(t *testing.T) {
	svc := newTestService(t)
	req := NewRequest(
		SubjectForRole("intern"),
		ObjectName("crm", "customers"),
		NormalizeAction("view"),
	)
	allowed, err := svc.Check(context.Background(), req)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestSubjectForRole(t *testing.T) {
	require.Equal(t, "role:sales", SubjectForRole("Sales"))
	require.Equal(t, "role:sales", SubjectForRole("role:sales"))
	require.Equal(t, "role:unnamed", SubjectForRole("  "))
}

func TestObjectName(t *testing.T) {
	require.Equal(t, "crm.customers", ObjectName(" CRM ", "Customers"))
	require.Equal(t, "global.resource", ObjectName("", ""))
}
