package numerapi

// CryptoAPI is the client for the Numerai Crypto tournament. It carries
// no operations of its own yet; the shared client operations apply with
// the crypto tournament id.
type CryptoAPI struct {
	*Client
}

// NewCryptoAPI creates a crypto-tournament client.
func NewCryptoAPI(opts ...Option) *CryptoAPI {
	c := NewClient(opts...)
	c.tournamentID = tournamentCrypto
	return &CryptoAPI{Client: c}
}
