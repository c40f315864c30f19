package routes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/pkg/router"
)

func TestTable(t *testing.T) {
	table := routes.Table()

	want := []router.RouteInfo{
		{Method: "POST", Path: "/auth/register", Name: "auth.register"},
		{Method: "POST", Path: "/auth/login", Name: "auth.login"},
		{Method: "POST", Path: "/auth/logout", Name: "auth.logout"},
		{Method: "POST", Path: "/vendor", Name: "vendor.create"},
		{Method: "GET", Path: "/vendor", Name: "vendor.show"},
		{Method: "GET", Path: "/vendor/all", Name: "vendor.index"},
		{Method: "GET", Path: "/vendor/{id}", Name: "vendor.find"},
		{Method: "PUT", Path: "/vendor", Name: "vendor.update"},
		{Method: "DELETE", Path: "/vendor", Name: "vendor.delete"},
		{Method: "POST", Path: "/payment", Name: "payment.create"},
		{Method: "GET", Path: "/payment", Name: "payment.index"},
		{Method: "GET", Path: "/payment/all", Name: "payment.all"},
		{Method: "GET", Path: "/payment/{id}", Name: "payment.show"},
		{Method: "PATCH", Path: "/payment/{id}", Name: "payment.update"},
		{Method: "DELETE", Path: "/payment/{id}", Name: "payment.delete"},
		{Method: "GET", Path: "/health", Name: "health"},
		{Method: "GET", Path: "/metrics", Name: "metrics"},
	}
	assert.ElementsMatch(t, want, table)
}
