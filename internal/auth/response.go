package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorResponse is the JSON body of every rejected request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Gate decision outcomes.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

//nolint:gochecknoglobals // prometheus collectors are registered once
var gateDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_gate_decisions_total",
		Help: "Number of authentication and authorization gate decisions, by gate and outcome.",
	},
	[]string{"gate", "outcome"},
)

// ObserveGateDecision counts one decision of gate.
func ObserveGateDecision(gate, outcome string) {
	gateDecisions.WithLabelValues(gate, outcome).Inc()
}

// Reject writes the uniform error payload with the given status and stops the chain.
func Reject(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error:   utils.StatusMessage(status),
		Message: message,
	})
}
