// 指示: miu200521358
package mmath

import "math"

// MirrorZ は位置・方向ベクトルのZ軸を反転する。2回適用すると元に戻る。
func MirrorZ(v Vec3) Vec3 {
	return NewVec3(v.X, v.Y, -v.Z)
}

// MirrorZQuaternion はZ軸反転座標系での同じ回転を返す。
// 鏡映 diag(1,1,-1) による共役で、X/Y 成分が反転する。2回適用すると元に戻る。
func MirrorZQuaternion(q Quaternion) Quaternion {
	return NewQuaternionByValues(-q.X(), -q.Y(), q.Z(), q.W())
}

// LookAngles は注視点から視点への向きを、Y軸回転→X軸回転の順のオイラー角と距離で返す。
// 視点は注視点から (0,0,-distance) を回転した位置にある。視点と注視点が一致する場合は角度0を返す。
func LookAngles(eye Vec3, target Vec3) (pitch float64, yaw float64, distance float64) {
	offset := eye.Subed(target)
	distance = offset.Length()
	if distance == 0 {
		return 0, 0, 0
	}
	direction := offset.MuledScalar(1 / distance)
	pitch = math.Asin(math.Max(-1, math.Min(1, direction.Y)))
	if math.Hypot(direction.X, direction.Z) < 1e-12 {
		return pitch, 0, distance
	}
	yaw = math.Atan2(-direction.X, -direction.Z)
	return pitch, yaw, distance
}
