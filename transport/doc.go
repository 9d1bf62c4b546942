// Package transport exposes the mediation core over HTTP. The telephony
// vendor posts call lifecycle webhooks here and receives directives telling
// it what to speak or play next. The package stays deliberately thin: it
// decodes requests, delegates to the orchestrator and encodes directives,
// while everything vendor-specific (SIP, media streams, speech-to-text)
// lives on the other side of the webhook.
package transport
