package spdm

// NegotiatedAlgorithms is the immutable result of a completed
// NEGOTIATE_ALGORITHMS/ALGORITHMS exchange.
type NegotiatedAlgorithms struct {
	Asym        AsymAlgo
	Hash        HashAlgo
	AEAD        AEADAlgo
	KeyExchange KeyExchangeAlgo
}

// selectAsym picks the highest-priority entry in local (in priority
// order, highest first) that also appears in peer. Ties are broken by
// local's ordering, i.e. the engine's compile-time priority order.
func selectAsym(local []AsymAlgo, peer []AsymAlgo) (AsymAlgo, error) {
	for _, l := range local {
		for _, p := range peer {
			if l == p {
				return l, nil
			}
		}
	}
	return AsymNone, ErrAlgorithmMismatch
}

func selectHash(local []HashAlgo, peer []HashAlgo) (HashAlgo, error) {
	for _, l := range local {
		for _, p := range peer {
			if l == p {
				return l, nil
			}
		}
	}
	return HashNone, ErrAlgorithmMismatch
}

func selectAEAD(local []AEADAlgo, peer []AEADAlgo) (AEADAlgo, error) {
	for _, l := range local {
		for _, p := range peer {
			if l == p {
				return l, nil
			}
		}
	}
	return AEADNone, ErrAlgorithmMismatch
}

func selectKeyExchange(local []KeyExchangeAlgo, peer []KeyExchangeAlgo) (KeyExchangeAlgo, error) {
	if len(local) == 0 || len(peer) == 0 {
		// Key exchange groups are only required when a DHE session path
		// is used; this engine's PSK path never consults the result.
		return KeyExchangeNone, nil
	}
	for _, l := range local {
		for _, p := range peer {
			if l == p {
				return l, nil
			}
		}
	}
	return KeyExchangeNone, ErrAlgorithmMismatch
}

// NegotiateAlgorithms selects one entry per algorithm class from the
// intersection of locally enabled and peer-supported options, applying
// local's compile-time priority order to break ties. AEAD and
// key-exchange selection only matters on the PSK path (and for the
// latter, only in a future DHE phase); selectKeyExchange tolerates
// either side declaring no groups.
func NegotiateAlgorithms(local Config, peerAsym []AsymAlgo, peerHash []HashAlgo, peerAEAD []AEADAlgo, peerKex []KeyExchangeAlgo) (NegotiatedAlgorithms, error) {
	asym, err := selectAsym(local.AsymAlgos, peerAsym)
	if err != nil {
		return NegotiatedAlgorithms{}, err
	}
	hash, err := selectHash(local.HashAlgos, peerHash)
	if err != nil {
		return NegotiatedAlgorithms{}, err
	}
	aead, err := selectAEAD(local.AEADAlgos, peerAEAD)
	if err != nil && local.LocalCapabilities.Has(CapPSK) {
		return NegotiatedAlgorithms{}, err
	}
	kex, err := selectKeyExchange(local.KeyExchangeAlgos, peerKex)
	if err != nil {
		return NegotiatedAlgorithms{}, err
	}
	return NegotiatedAlgorithms{Asym: asym, Hash: hash, AEAD: aead, KeyExchange: kex}, nil
}
