// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion は回転クォータニオンを表す。Real がW、Imag/Jmag/Kmag がX/Y/Zに対応する。
type Quaternion struct {
	quat.Number
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Number: quat.Number{Real: 1}}
}

// NewQuaternionByValues はX,Y,Z,W指定でクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Number: quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}}
}

// NewQuaternionBySlice は [x,y,z,w] のスライスからクォータニオンを生成する。空なら単位クォータニオン。
func NewQuaternionBySlice(values []float64) Quaternion {
	if len(values) < 4 {
		return NewQuaternion()
	}
	return NewQuaternionByValues(values[0], values[1], values[2], values[3])
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)から回転を生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radians float64) Quaternion {
	unit := axis.Normalized()
	s := math.Sin(radians / 2)
	return NewQuaternionByValues(unit.X*s, unit.Y*s, unit.Z*s, math.Cos(radians/2))
}

// X はX成分を返す。
func (q Quaternion) X() float64 { return q.Imag }

// Y はY成分を返す。
func (q Quaternion) Y() float64 { return q.Jmag }

// Z はZ成分を返す。
func (q Quaternion) Z() float64 { return q.Kmag }

// W はW成分を返す。
func (q Quaternion) W() float64 { return q.Real }

// Muled は q*other を返す。other を先に適用する回転になる。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Number: quat.Mul(q.Number, other.Number)}
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	if quat.Abs(q.Number) == 0 {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Inv(q.Number)}
}

// Normalized は正規化したクォータニオンを返す。
func (q Quaternion) Normalized() Quaternion {
	length := quat.Abs(q.Number)
	if length == 0 {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Scale(1/length, q.Number)}
}

// MulVec3 はベクトルを回転させる。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q.Number, p), quat.Conj(q.Number))
	return Vec3{Vec: r3.Vec{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}}
}

// Dot は内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.Real*other.Real + q.Imag*other.Imag + q.Jmag*other.Jmag + q.Kmag*other.Kmag
}

// IsFinite は全要素が有限値か判定する。
func (q Quaternion) IsFinite() bool {
	return isFinite(q.Real) && isFinite(q.Imag) && isFinite(q.Jmag) && isFinite(q.Kmag)
}

// NearEquals は同じ回転を表すか判定する。q と -q は同一回転として扱う。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	if epsilon <= 0 {
		epsilon = defaultEpsilon
	}
	return math.Abs(math.Abs(q.Normalized().Dot(other.Normalized()))-1) <= epsilon
}
