// 指示: miu200521358
package model

import (
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// CompositeSubmesh は統合後メッシュ内のサブメッシュを表す。
type CompositeSubmesh struct {
	Submesh
	SourceMesh    int
	SourceSubmesh int
	VertexOffset  int
}

// GlobalIndices は統合後の頂点空間へずらしたインデックスを返す。
func (s *CompositeSubmesh) GlobalIndices() []int {
	indices := make([]int, len(s.Indices))
	for i, index := range s.Indices {
		indices[i] = index + s.VertexOffset
	}
	return indices
}

// CompositeMesh は複数メッシュを連結したメッシュを表す。
type CompositeMesh struct {
	Name        string
	Submeshes   []CompositeSubmesh
	VertexCount int
	IndexCount  int
}

// Vertices は全頂点を統合後の順で返す。
func (c *CompositeMesh) Vertices() []Vertex {
	vertices := make([]Vertex, 0, c.VertexCount)
	for _, submesh := range c.Submeshes {
		vertices = append(vertices, submesh.Vertices...)
	}
	return vertices
}

// ToMesh は統合結果を次の統合入力に使えるメッシュへ戻す。
func (c *CompositeMesh) ToMesh() *Mesh {
	mesh := &Mesh{Name: c.Name, Submeshes: make([]Submesh, 0, len(c.Submeshes))}
	for _, submesh := range c.Submeshes {
		mesh.Submeshes = append(mesh.Submeshes, submesh.Submesh)
	}
	return mesh
}

// ValidateBoneIndexes は全ボーン影響が合成骨格の範囲内か検証する。
func (c *CompositeMesh) ValidateBoneIndexes(boneCount int) error {
	for si, submesh := range c.Submeshes {
		for vi, vertex := range submesh.Vertices {
			for _, influence := range vertex.Influences {
				if influence.BoneIndex < 0 || influence.BoneIndex >= boneCount {
					return merr.NewIndexConsistency(
						"頂点のボーンindexが骨格の範囲外です: submesh=%d(%s) vertex=%d bone=%d bones=%d",
						nil, si, submesh.Name, vi, influence.BoneIndex, boneCount,
					)
				}
			}
		}
	}
	return nil
}

// MergeMeshes はメッシュ群を順に連結する。
// 先頭メッシュのボーン影響はそのまま、2番目以降は remap を通して書き換える。
// remap が nil の場合は全メッシュが先頭メッシュと同じボーン空間にあるものとして扱う。
// ウェイト0の影響は情報を持たないため除外する。
func MergeMeshes(meshes []*Mesh, remap *RemapTable) (*CompositeMesh, error) {
	if len(meshes) == 0 || meshes[0] == nil {
		return nil, merr.NewMissingAsset("統合対象のメッシュがありません", nil)
	}

	composite := &CompositeMesh{Name: meshes[0].Name}
	for mi, mesh := range meshes {
		if mesh == nil {
			return nil, merr.NewMissingAsset("統合対象のメッシュが未設定です: mesh=%d", nil, mi)
		}
		useRemap := mi > 0 && remap != nil
		for si, submesh := range mesh.Submeshes {
			merged, err := mergeSubmesh(mesh.Name, si, submesh, useRemap, remap)
			if err != nil {
				return nil, err
			}
			composite.Submeshes = append(composite.Submeshes, CompositeSubmesh{
				Submesh:       merged,
				SourceMesh:    mi,
				SourceSubmesh: si,
				VertexOffset:  composite.VertexCount,
			})
			composite.VertexCount += len(merged.Vertices)
			composite.IndexCount += len(merged.Indices)
		}
	}

	logModelInfo(
		"メッシュ統合完了: meshes=%d submeshes=%d vertices=%d indices=%d",
		len(meshes), len(composite.Submeshes), composite.VertexCount, composite.IndexCount,
	)
	return composite, nil
}

// mergeSubmesh はサブメッシュを複製し、必要ならボーン影響を書き換える。
func mergeSubmesh(meshName string, submeshIndex int, submesh Submesh, useRemap bool, remap *RemapTable) (Submesh, error) {
	vertexCount := len(submesh.Vertices)
	for _, index := range submesh.Indices {
		if index < 0 || index >= vertexCount {
			return Submesh{}, merr.NewIndexConsistency(
				"面インデックスがサブメッシュの頂点範囲外です: mesh=%s submesh=%d index=%d vertices=%d",
				nil, meshName, submeshIndex, index, vertexCount,
			)
		}
	}
	if len(submesh.Indices)%3 != 0 {
		return Submesh{}, merr.NewUnsupportedFormat(
			"面インデックス数が3の倍数ではありません: mesh=%s submesh=%d indices=%d",
			nil, meshName, submeshIndex, len(submesh.Indices),
		)
	}

	merged := Submesh{
		Name:        submesh.Name,
		TextureName: submesh.TextureName,
		Vertices:    make([]Vertex, vertexCount),
		Indices:     append([]int(nil), submesh.Indices...),
	}
	unweighted := 0
	for vi, vertex := range submesh.Vertices {
		influences := make([]Influence, 0, len(vertex.Influences))
		for _, influence := range vertex.Influences {
			if influence.Weight == 0 {
				continue
			}
			if useRemap {
				mapped, ok := remap.Lookup(influence.BoneIndex)
				if !ok {
					return Submesh{}, merr.NewRemapLookupFailed(
						"ボーン影響がリマップ表にありません: mesh=%s submesh=%d vertex=%d bone=%d",
						nil, meshName, submeshIndex, vi, influence.BoneIndex,
					)
				}
				influence.BoneIndex = mapped
			}
			influences = append(influences, influence)
		}
		if len(influences) == 0 {
			unweighted++
		}
		vertex.Influences = influences
		merged.Vertices[vi] = vertex
	}
	if unweighted > 0 {
		logModelWarn(
			"ボーン影響を持たない頂点があります: mesh=%s submesh=%d vertices=%d",
			meshName, submeshIndex, unweighted,
		)
	}
	return merged, nil
}
