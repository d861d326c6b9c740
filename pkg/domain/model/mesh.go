// 指示: miu200521358
package model

import "github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"

// Influence は頂点へのボーン影響を表す。BoneIndex は所属リグのボーンindex。
type Influence struct {
	BoneIndex int
	Weight    float64
}

// Vertex はメッシュ頂点を表す。
type Vertex struct {
	Position   mmath.Vec3
	Normal     mmath.Vec3
	UV         mmath.Vec2
	Influences []Influence
}

// Submesh は1材質分の頂点・インデックス範囲を表す。Indices は Vertices 内のローカルindex。
type Submesh struct {
	Name        string
	TextureName string
	Vertices    []Vertex
	Indices     []int
}

// Mesh はサブメッシュの並びを表す。
type Mesh struct {
	Name      string
	Submeshes []Submesh
}

// VertexCount は全サブメッシュの頂点数合計を返す。
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	total := 0
	for _, submesh := range m.Submeshes {
		total += len(submesh.Vertices)
	}
	return total
}

// TextureSource は材質が参照するテクスチャ名と元画像のパスを表す。
type TextureSource struct {
	Name       string
	SourcePath string
}

// MeshBundle はメッシュダンプ1件分のメッシュ群と元画像一覧を表す。
type MeshBundle struct {
	Name     string
	Meshes   []*Mesh
	Textures []TextureSource
}

// EncodedTexture は出力形式へ符号化済みのテクスチャを表す。Name は材質が参照するファイル名。
type EncodedTexture struct {
	Name string
	Data []byte
}
