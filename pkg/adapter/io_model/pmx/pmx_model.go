// 指示: miu200521358
// Package pmx は合成済みアバターとメッシュをPMX 2.0形式で読み書きする。
package pmx

import "github.com/go-gl/mathgl/mgl32"

const (
	// PMX_SIGNATURE はPMXファイルの識別子。
	PMX_SIGNATURE = "PMX "
	// PMX_VERSION は出力するPMXバージョン。
	PMX_VERSION float32 = 2.0
	// pmxGlobalsCount はヘッダのグローバル設定数。
	pmxGlobalsCount = 8
	// pmxEncodingUTF16 はUTF-16LEを表すエンコード種別。
	pmxEncodingUTF16 = 0
)

// DeformType は頂点変形方式を表す。
type DeformType uint8

const (
	// DEFORM_BDEF1 は1ボーン変形。
	DEFORM_BDEF1 DeformType = 0
	// DEFORM_BDEF2 は2ボーン変形。
	DEFORM_BDEF2 DeformType = 1
)

// ボーンフラグ。
const (
	BONE_FLAG_TAIL_IS_BONE              uint16 = 0x0001
	BONE_FLAG_CAN_ROTATE                uint16 = 0x0002
	BONE_FLAG_CAN_TRANSLATE             uint16 = 0x0004
	BONE_FLAG_IS_VISIBLE                uint16 = 0x0008
	BONE_FLAG_CAN_MANIPULATE            uint16 = 0x0010
	BONE_FLAG_IS_IK                     uint16 = 0x0020
	BONE_FLAG_IS_EXTERNAL_ROTATION      uint16 = 0x0100
	BONE_FLAG_IS_EXTERNAL_TRANSLATION   uint16 = 0x0200
	BONE_FLAG_HAS_FIXED_AXIS            uint16 = 0x0400
	BONE_FLAG_HAS_LOCAL_AXIS            uint16 = 0x0800
	BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM uint16 = 0x2000
)

// 材質描画フラグ。
const (
	DRAW_FLAG_DOUBLE_SIDED_DRAWING        uint8 = 0x01
	DRAW_FLAG_GROUND_SHADOW               uint8 = 0x02
	DRAW_FLAG_DRAWING_ON_SELF_SHADOW_MAPS uint8 = 0x04
	DRAW_FLAG_DRAWING_SELF_SHADOWS        uint8 = 0x08
	DRAW_FLAG_DRAWING_EDGE                uint8 = 0x10
)

// Header はPMXヘッダのグローバル設定を表す。
type Header struct {
	Version           float32
	Encoding          uint8
	AdditionalUVCount uint8
	VertexIndexSize   int
	TextureIndexSize  int
	MaterialIndexSize int
	BoneIndexSize     int
	MorphIndexSize    int
	RigidIndexSize    int
}

// Deform は頂点のボーン変形を表す。BDEF1では BoneIndexes[0] のみ有効。
type Deform struct {
	Type        DeformType
	BoneIndexes [2]int
	Weight0     float32
}

// Vertex はPMX頂点を表す。
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Deform    Deform
	EdgeScale float32
}

// Material はPMX材質を表す。Specular のWは反射強度。
type Material struct {
	Name         string
	EnglishName  string
	Diffuse      mgl32.Vec4
	Specular     mgl32.Vec4
	Ambient      mgl32.Vec3
	DrawFlag     uint8
	Edge         mgl32.Vec4
	EdgeSize     float32
	TextureIndex int
	SphereIndex  int
	SphereMode   uint8
	ToonSharing  uint8
	ToonIndex    int
	Memo         string
	IndexCount   int
}

// Bone はPMXボーンを表す。TailIndex が -1 の場合は TailOffset を使う。
type Bone struct {
	Name        string
	EnglishName string
	Position    mgl32.Vec3
	ParentIndex int
	Layer       int
	Flag        uint16
	TailIndex   int
	TailOffset  mgl32.Vec3
}

// DisplaySlot はPMX表示枠を表す。要素はボーンindexのみ。
type DisplaySlot struct {
	Name        string
	EnglishName string
	Special     uint8
	BoneIndexes []int
}

// PmxModel はPMXファイル1件分の内容を表す。
type PmxModel struct {
	Header         Header
	Name           string
	EnglishName    string
	Comment        string
	EnglishComment string
	Vertices       []Vertex
	Faces          [][3]int
	Textures       []string
	Materials      []Material
	Bones          []Bone
	DisplaySlots   []DisplaySlot
	MorphCount     int
	RigidCount     int
	JointCount     int
}

// ParentIndexes はボーンの親index一覧を返す。
func (m *PmxModel) ParentIndexes() []int {
	parents := make([]int, len(m.Bones))
	for i, bone := range m.Bones {
		parents[i] = bone.ParentIndex
	}
	return parents
}

// resolveIndexSize は件数からindexサイズを決める。頂点indexは符号無しで数える。
func resolveIndexSize(count int, unsigned bool) int {
	if unsigned {
		switch {
		case count <= 0xFF:
			return 1
		case count <= 0xFFFF:
			return 2
		}
		return 4
	}
	switch {
	case count <= 0x7F:
		return 1
	case count <= 0x7FFF:
		return 2
	}
	return 4
}
