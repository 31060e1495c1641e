package domain

// Chain identifies the blockchain a contract address belongs to.
type Chain string

const (
	ChainSolana Chain = "solana"
	ChainEVM    Chain = "evm"

	// ChainAll is the zero value; store queries treat it as "no chain filter".
	ChainAll Chain = ""
)

// Chains returns every chain the system detects and ranks.
// Adding a chain means adding a constant here plus a detector for it.
func Chains() []Chain {
	return []Chain{ChainSolana, ChainEVM}
}

// String returns the string representation of Chain.
func (c Chain) String() string {
	return string(c)
}

// IsValid checks if the chain is a registered value.
func (c Chain) IsValid() bool {
	for _, known := range Chains() {
		if c == known {
			return true
		}
	}
	return false
}
