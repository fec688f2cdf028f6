// Package bip352 implements the BIP-352 silent payments cryptographic core:
// tagged hashing, the silent payment code codec, key and label derivation,
// the shared-secret engine, and the sender/receiver derivation paths.
//
// The package is single-threaded and stateless: every exported function is a
// pure function over its arguments plus caller-supplied private material.
// There is no module-level state and nothing here performs network I/O,
// storage, or BIP-32/BIP-39 derivation - those are host concerns, wired in
// by package wallet for convenience.
package bip352

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Tagged hash domains required by BIP-352.
const (
	TagInputs       = "BIP0352/Inputs"
	TagLabel        = "BIP0352/Label"
	TagSharedSecret = "BIP0352/SharedSecret"
)

// TaggedHash computes SHA256(SHA256(tag) || SHA256(tag) || data...).
func TaggedHash(tag string, parts ...[]byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))

	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, p := range parts {
		h.Write(p)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CurveErrorKind discriminates the ways curve arithmetic can fail.
type CurveErrorKind int

const (
	ErrCurveIdentity CurveErrorKind = iota
	ErrCurveInvalidScalar
	ErrCurveInvalidPoint
)

// CurveError is returned by scalar/point construction and arithmetic that
// would otherwise produce an invalid (zero scalar, identity point) result.
type CurveError struct {
	Kind CurveErrorKind
}

func (e *CurveError) Error() string {
	switch e.Kind {
	case ErrCurveIdentity:
		return "bip352: result is the point at infinity"
	case ErrCurveInvalidScalar:
		return "bip352: scalar is zero or out of range"
	case ErrCurveInvalidPoint:
		return "bip352: point is not a valid secp256k1 point"
	default:
		return "bip352: curve error"
	}
}

// ScalarErrorKind discriminates tagged-hash-to-scalar reduction failures.
type ScalarErrorKind int

const (
	ScalarZero ScalarErrorKind = iota
	ScalarOutOfRange
)

// ScalarError is returned when a tagged-hash output does not reduce to a
// usable scalar (probability ~2^-128 for a well-formed hash).
type ScalarError struct {
	Kind ScalarErrorKind
}

func (e *ScalarError) Error() string {
	switch e.Kind {
	case ScalarZero:
		return "bip352: tagged hash reduced to zero"
	case ScalarOutOfRange:
		return "bip352: tagged hash is not a valid curve order residue"
	default:
		return "bip352: scalar error"
	}
}

// Scalar is a non-zero element of Z_n, where n is the secp256k1 group order.
// The zero value is not a valid Scalar; always construct one through the
// functions in this package.
type Scalar struct {
	s secp.ModNScalar
}

// ScalarFromBytes parses a 32-byte big-endian secret key. It fails if the
// value is zero or exceeds the curve order.
func ScalarFromBytes(b [32]byte) (Scalar, error) {
	var s secp.ModNScalar
	overflow := s.SetBytes(&b)
	if overflow != 0 {
		return Scalar{}, &CurveError{Kind: ErrCurveInvalidScalar}
	}
	if s.IsZero() {
		return Scalar{}, &CurveError{Kind: ErrCurveInvalidScalar}
	}
	return Scalar{s: s}, nil
}

// scalarFromTaggedHash reduces a tagged-hash digest to a Scalar, surfacing
// the distinction between "hash was zero" and "hash exceeded the curve
// order" as required by spec ("tag-hash overflow" handling).
func scalarFromTaggedHash(h [32]byte) (Scalar, error) {
	var s secp.ModNScalar
	overflow := s.SetBytes(&h)
	if overflow != 0 {
		return Scalar{}, &ScalarError{Kind: ScalarOutOfRange}
	}
	if s.IsZero() {
		return Scalar{}, &ScalarError{Kind: ScalarZero}
	}
	return Scalar{s: s}, nil
}

// Bytes serializes the scalar as 32 big-endian bytes.
func (s Scalar) Bytes() [32]byte {
	return s.s.Bytes()
}

// Negate returns -s mod n.
func (s Scalar) Negate() Scalar {
	r := s.s
	r.Negate()
	return Scalar{s: r}
}

// Mul returns s*o mod n.
func (s Scalar) Mul(o Scalar) Scalar {
	r := s.s
	r.Mul(&o.s)
	return Scalar{s: r}
}

// Add returns s+o mod n.
func (s Scalar) Add(o Scalar) Scalar {
	r := s.s
	r.Add(&o.s)
	return Scalar{s: r}
}

// PubKey returns s*G.
func (s Scalar) PubKey() Point {
	var rj btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&s.s, &rj)
	rj.ToAffine()
	return Point{p: *btcec.NewPublicKey(&rj.X, &rj.Y)}
}

// ScalarAccumulator sums private-key contributions without enforcing the
// non-zero invariant until Finish is called; intermediate partial sums are
// allowed to be zero (they cancel out with more terms, unlike the final
// result, which the protocol requires to be non-zero).
type ScalarAccumulator struct {
	sum secp.ModNScalar
	n   int
}

// Add folds in another contribution.
func (a *ScalarAccumulator) Add(s Scalar) {
	if a.n == 0 {
		a.sum = s.s
	} else {
		a.sum.Add(&s.s)
	}
	a.n++
}

// Finish returns the accumulated scalar, failing if no terms were added or
// the sum is zero.
func (a *ScalarAccumulator) Finish() (Scalar, error) {
	if a.n == 0 || a.sum.IsZero() {
		return Scalar{}, &CurveError{Kind: ErrCurveInvalidScalar}
	}
	return Scalar{s: a.sum}, nil
}

// Point is a non-identity secp256k1 group element.
type Point struct {
	p btcec.PublicKey
}

// PointFromCompressed parses a 33-byte compressed public key.
func PointFromCompressed(b []byte) (Point, error) {
	pk, err := btcec.ParsePubKey(b)
	if err != nil {
		return Point{}, &CurveError{Kind: ErrCurveInvalidPoint}
	}
	return Point{p: *pk}, nil
}

// PointFromXOnlyEven lifts a 32-byte x-only key to the even-parity point.
func PointFromXOnlyEven(x [32]byte) (Point, error) {
	pk, err := schnorr.ParsePubKey(x[:])
	if err != nil {
		return Point{}, &CurveError{Kind: ErrCurveInvalidPoint}
	}
	return Point{p: *pk}, nil
}

// Compressed serializes the point as 33 bytes.
func (p Point) Compressed() [33]byte {
	var out [33]byte
	copy(out[:], p.p.SerializeCompressed())
	return out
}

// XOnly serializes the point's x-coordinate only (BIP-340 style), discarding
// parity.
func (p Point) XOnly() [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(&p.p))
	return out
}

// IsOddY reports whether the point's y-coordinate is odd.
func (p Point) IsOddY() bool {
	return p.p.Y().Bit(0) == 1
}

// Equal reports whether two points are the same curve point.
func (p Point) Equal(o Point) bool {
	return p.p.IsEqual(&o.p)
}

// Negate returns -p.
func (p Point) Negate() Point {
	var pj btcec.JacobianPoint
	p.p.AsJacobian(&pj)
	pj.Y.Negate(1).Normalize()
	pj.ToAffine()
	return Point{p: *btcec.NewPublicKey(&pj.X, &pj.Y)}
}

// Add returns p+o, failing if the result is the point at infinity.
func (p Point) Add(o Point) (Point, error) {
	var aj, bj, rj btcec.JacobianPoint
	p.p.AsJacobian(&aj)
	o.p.AsJacobian(&bj)
	btcec.AddNonConst(&aj, &bj, &rj)
	if rj.Z.IsZero() {
		return Point{}, &CurveError{Kind: ErrCurveIdentity}
	}
	rj.ToAffine()
	return Point{p: *btcec.NewPublicKey(&rj.X, &rj.Y)}, nil
}

// Mul returns s*p, failing if the result is the point at infinity.
func (p Point) Mul(s Scalar) (Point, error) {
	var aj, rj btcec.JacobianPoint
	p.p.AsJacobian(&aj)
	btcec.ScalarMultNonConst(&s.s, &aj, &rj)
	if rj.Z.IsZero() {
		return Point{}, &CurveError{Kind: ErrCurveIdentity}
	}
	rj.ToAffine()
	return Point{p: *btcec.NewPublicKey(&rj.X, &rj.Y)}, nil
}

// PointAccumulator sums public-key contributions, only enforcing the
// non-identity invariant when Finish is called.
type PointAccumulator struct {
	sum btcec.JacobianPoint
	n   int
}

// Add folds in another contribution.
func (a *PointAccumulator) Add(p Point) {
	var pj btcec.JacobianPoint
	p.p.AsJacobian(&pj)
	if a.n == 0 {
		a.sum = pj
	} else {
		btcec.AddNonConst(&a.sum, &pj, &a.sum)
	}
	a.n++
}

// Finish returns the accumulated point, failing if no terms were added or
// the sum is the point at infinity.
func (a *PointAccumulator) Finish() (Point, error) {
	if a.n == 0 || a.sum.Z.IsZero() {
		return Point{}, &CurveError{Kind: ErrCurveIdentity}
	}
	affine := a.sum
	affine.ToAffine()
	return Point{p: *btcec.NewPublicKey(&affine.X, &affine.Y)}, nil
}
