package types

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/setavenger/go-silentpayments/bip352"
)

// Network represents the Bitcoin network type
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkSignet  Network = "signet"
	NetworkRegtest Network = "regtest"
)

var (
	// Network parameters for different networks
	NetworkParams = map[Network]*chaincfg.Params{
		NetworkMainnet: &chaincfg.MainNetParams,
		NetworkTestnet: &chaincfg.TestNet3Params,
		NetworkSignet:  &chaincfg.SigNetParams,
		NetworkRegtest: &chaincfg.RegressionNetParams,
	}
)

// CodeNetwork maps the four-network wallet tag down to the three-way tag
// the bip352 codec encodes: testnet and signet addresses are
// indistinguishable (both use the tsp human-readable part), so both map to
// NetworkTestnetOrSignet.
func (n Network) CodeNetwork() bip352.Network {
	switch n {
	case NetworkMainnet:
		return bip352.NetworkMainnet
	case NetworkRegtest:
		return bip352.NetworkRegtest
	default:
		return bip352.NetworkTestnetOrSignet
	}
}
