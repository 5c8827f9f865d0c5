package service

import "github.com/prometheus/client_golang/prometheus"

var (
	loginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_login_total", Help: "Password login attempts"},
		[]string{"result"},
	)
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_token_refresh_total", Help: "Access token refresh attempts"},
		[]string{"result"},
	)
	authzChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "authz_checks_total", Help: "Permission checks by outcome"},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(loginTotal, refreshTotal, authzChecks) }

func outcome(ok bool) string {
	if ok {
		return "granted"
	}
	return "denied"
}
