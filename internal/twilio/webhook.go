package twilio

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/pathakanu/alina/internal/transport"
	"github.com/rs/zerolog"
)

// Webhook returns the HTTP handler for incoming Twilio messages. Replies are
// written back as TwiML; an empty reply produces an empty Response.
func Webhook(handler transport.Handler, logger zerolog.Logger) http.HandlerFunc {
	logger = logger.With().Str("component", "twilio_webhook").Logger()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			logger.Warn().Err(err).Msg("webhook: parse error")
			writeTwilioResponse(w, "Sorry, I couldn't understand that request.", logger)
			return
		}

		from := NormalizeWhatsAppAddress(r.FormValue("From"))
		body := strings.TrimSpace(r.FormValue("Body"))
		if from == "" || body == "" {
			writeTwilioResponse(w, "", logger)
			return
		}

		var reply string
		if command, args, ok := ParseCommand(body); ok {
			reply = handler.HandleCommand(r.Context(), from, command, args)
		} else {
			reply = handler.HandleMessage(r.Context(), from, body)
		}
		writeTwilioResponse(w, reply, logger)
	}
}

// ParseCommand splits "/cmd args" into its parts.
func ParseCommand(body string) (command, args string, ok bool) {
	if !strings.HasPrefix(body, "/") {
		return "", "", false
	}
	command, args, _ = strings.Cut(strings.TrimPrefix(body, "/"), " ")
	command = strings.ToLower(strings.TrimSpace(command))
	if command == "" {
		return "", "", false
	}
	return command, strings.TrimSpace(args), true
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

func writeTwilioResponse(w http.ResponseWriter, message string, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/xml")
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: message}); err != nil {
		logger.Warn().Err(err).Msg("twilio response encode")
	}
}
