package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with query parameters.
	// Returns the response body as bytes or an error. There is no retry
	// layer: a failure is surfaced once and the caller decides.
	Get(url string, params map[string]string) ([]byte, error)
}
