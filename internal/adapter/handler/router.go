package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	Payments      *PaymentHandler
	CheckIns      *CheckInHandler
	Health        http.Handler
	CallbackGuard *CallbackGuard
	Sessions      SessionVerifier
	Gatherer      prometheus.Gatherer
	Log           *zap.Logger
}

func (rt Router) Handler() http.Handler {
	authed := RequireSession(rt.Sessions)

	mux := http.NewServeMux()
	mux.Handle("POST /payments/mpesa", authed(http.HandlerFunc(rt.Payments.Initiate)))
	mux.Handle("POST /payments/mpesa/callback", rt.CallbackGuard.Wrap(http.HandlerFunc(rt.Payments.Callback)))
	mux.Handle("POST /events/{eventID}/checkins", authed(http.HandlerFunc(rt.CheckIns.Verify)))
	mux.Handle("GET /healthz", rt.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(rt.Gatherer, promhttp.HandlerOpts{}))

	return Recoverer(rt.Log)(RequestLogger(rt.Log)(CORS(mux)))
}
