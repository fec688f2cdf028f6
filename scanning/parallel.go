// Package scanning fans a batch of in-memory transactions out across a
// bounded pool of goroutines and calls bip352.ScanTransaction on each,
// collecting owned outputs. There is no network client here: the block or
// mempool feed is entirely the host's responsibility, supplied as a plain
// slice of TxTweakData.
package scanning

import (
	"context"
	"sync"

	"github.com/setavenger/go-silentpayments/bip352"
	"github.com/setavenger/go-silentpayments/logging"
	"github.com/setavenger/go-silentpayments/utils"
)

// TxTweakData is the minimum a host needs to supply per transaction for
// scanning: its identifier, the broadcast input-sum public key and outpoint
// hash, and the transaction's taproot output x-only keys. Txid is kept in
// internal (wire) byte order, matching bip352.Input.OutPoint.Hash, not the
// reversed order block explorers and RPCs display it in.
type TxTweakData struct {
	Txid         [32]byte
	PubKeySum    bip352.Point
	OutpointHash bip352.Scalar
	Outputs      [][32]byte
}

// ScanResult pairs a transaction identifier with whatever ScanTransaction
// found in it. Owned is nil/empty when the scan found nothing.
type ScanResult struct {
	Txid  [32]byte
	Owned []bip352.Owned
}

// ScanTransactions runs ScanTransaction over txs using a fixed-size worker
// pool, grounded on the teacher's channel-fed goroutine pool but with the
// gRPC stream replaced by a plain slice: there is no I/O to bound here, only
// CPU work, so workers defaults to a small fixed size when the caller
// passes zero or a negative value. Results are returned once every
// transaction has been scanned; the scan bails out early if ctx is
// cancelled.
func ScanTransactions(ctx context.Context, bScan bip352.Scalar, spendPub bip352.Point, txs []TxTweakData, labels bip352.LabelTable, workers int) ([]ScanResult, error) {
	if workers <= 0 {
		workers = 4
	}
	if len(txs) == 0 {
		return nil, nil
	}

	workChan := make(chan TxTweakData, len(txs))
	for _, tx := range txs {
		workChan <- tx
	}
	close(workChan)

	resultsChan := make(chan ScanResult, len(txs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case tx, ok := <-workChan:
					if !ok {
						return
					}

					owned, err := bip352.ScanTransaction(
						bScan, spendPub, tx.PubKeySum,
						tx.OutpointHash, tx.Outputs, labels,
					)
					if err != nil {
						logging.L.Err(err).
							Hex("txid", utils.ReverseBytesCopy(tx.Txid[:])).
							Msg("failed to scan transaction")
						continue
					}
					if len(owned) == 0 {
						continue
					}

					resultsChan <- ScanResult{Txid: tx.Txid, Owned: owned}
				}
			}
		}()
	}

	wg.Wait()
	close(resultsChan)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []ScanResult
	for r := range resultsChan {
		results = append(results, r)
	}
	return results, nil
}
