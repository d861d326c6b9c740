// 指示: miu200521358
package io_asset

// avatarDump はアバターダンプの記録形式を表す。
type avatarDump struct {
	Name     string            `json:"name"`
	Nodes    []nodeDump        `json:"nodes"`
	NodeIDs  []uint32          `json:"node_ids"`
	Paths    map[uint32]string `json:"paths"`
	RestPose []transformDump   `json:"rest_pose"`
}

// nodeDump は骨格ノード1件を表す。
type nodeDump struct {
	ParentIndex int `json:"parent_index"`
}

// transformDump はレスト変換を表す。rotation は [x,y,z,w]。
type transformDump struct {
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
}

// meshBundleDump はメッシュダンプの記録形式を表す。
type meshBundleDump struct {
	Meshes   []meshDump    `json:"meshes"`
	Textures []textureDump `json:"textures"`
}

// meshDump はメッシュ1件を表す。
type meshDump struct {
	Name      string        `json:"name"`
	Submeshes []submeshDump `json:"submeshes"`
}

// submeshDump はサブメッシュ1件を表す。
type submeshDump struct {
	Name        string       `json:"name"`
	TextureName string       `json:"texture_name"`
	Vertices    []vertexDump `json:"vertices"`
	Indices     []int        `json:"indices"`
}

// vertexDump は頂点1件を表す。
type vertexDump struct {
	Position   []float64       `json:"position"`
	Normal     []float64       `json:"normal"`
	UV         []float64       `json:"uv"`
	Influences []influenceDump `json:"influences"`
}

// influenceDump はボーン影響1件を表す。
type influenceDump struct {
	BoneIndex int     `json:"bone_index"`
	Weight    float64 `json:"weight"`
}

// textureDump はテクスチャ元画像1件を表す。source はダンプディレクトリからの相対パス。
type textureDump struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// motionBundleDump はモーションダンプの記録形式を表す。
type motionBundleDump struct {
	Motions []motionDump `json:"motions"`
}

// motionDump はモーション1件を表す。
type motionDump struct {
	Name            string               `json:"name"`
	FrameRate       float64              `json:"frame_rate"`
	BoneTracks      []boneTrackDump      `json:"bone_tracks"`
	CameraKeyframes []cameraKeyframeDump `json:"camera_keyframes"`
}

// boneTrackDump はボーントラック1件を表す。
type boneTrackDump struct {
	Path      string             `json:"path"`
	Keyframes []boneKeyframeDump `json:"keyframes"`
}

// boneKeyframeDump はボーンキーフレーム1件を表す。位置・回転は省略できる。
type boneKeyframeDump struct {
	Time     float64    `json:"time"`
	Position []float64  `json:"position,omitempty"`
	Rotation []float64  `json:"rotation,omitempty"`
	Curve    *curveDump `json:"curve,omitempty"`
}

// cameraKeyframeDump はカメラキーフレーム1件を表す。
type cameraKeyframeDump struct {
	Time        float64    `json:"time"`
	Target      []float64  `json:"target"`
	Eye         []float64  `json:"eye"`
	FieldOfView float64    `json:"field_of_view"`
	Roll        float64    `json:"roll"`
	Curve       *curveDump `json:"curve,omitempty"`
}

// curveDump はベジェ制御点を表す。
type curveDump struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}
