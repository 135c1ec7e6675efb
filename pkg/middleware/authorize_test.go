package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectFromPath(t *testing.T) {
	cases := []struct {
		path   string
		object string
		ok     bool
	}{
		{"/crm/api/customers", "crm.customers", true},
		{"/crm/api/customers/42/stage", "crm.customers", true},
		{"/core/api/org-units/3/descendants", "core.org_units", true},
		{"/audit/api/entries", "audit.entries", true},
		{"/debug/prometheus", "", false},
		{"/crm/customers", "", false},
		{"/", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			object, ok := objectFromPath(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.object, object)
		})
	}
}

func TestActionFromMethod(t *testing.T) {
	assert.Equal(t, "view", actionFromMethod(http.MethodGet))
	assert.Equal(t, "view", actionFromMethod(http.MethodHead))
	assert.Equal(t, "delete", actionFromMethod(http.MethodDelete))
	assert.Equal(t, "edit", actionFromMethod(http.MethodPost))
	assert.Equal(t, "edit", actionFromMethod(http.MethodPut))
}
