package ctxkey

const (
	// KeyRequestBody caches the raw request body on the gin context.
	KeyRequestBody = "key_request_body"
	// ClientRequestPayloadLogged marks that the inbound payload was already logged.
	ClientRequestPayloadLogged = "client_request_payload_logged"
)
