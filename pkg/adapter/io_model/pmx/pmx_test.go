// 指示: miu200521358
package pmx

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// newTestAvatar はパスと親index指定でテスト用アバターを生成する。
func newTestAvatar(name string, paths []string, parents []int) *model.Avatar {
	avatar := &model.Avatar{
		Name:     name,
		Nodes:    make([]model.AvatarNode, len(paths)),
		NodeIDs:  make([]uint32, len(paths)),
		PathByID: map[uint32]string{},
		RestPose: make([]model.Transform, len(paths)),
	}
	for i, path := range paths {
		id := uint32(100 + i)
		avatar.Nodes[i] = model.AvatarNode{ParentIndex: parents[i]}
		avatar.NodeIDs[i] = id
		avatar.PathByID[id] = path
		avatar.RestPose[i] = model.Transform{Translation: mmath.NewVec3(0, 0.1, 0), Rotation: mmath.NewQuaternion()}
	}
	return avatar
}

// newTestSubmesh は頂点数指定で三角形を並べたサブメッシュを生成する。
func newTestSubmesh(name string, vertexCount int, influences []model.Influence) model.Submesh {
	submesh := model.Submesh{Name: name, Vertices: make([]model.Vertex, vertexCount)}
	for i := range submesh.Vertices {
		submesh.Vertices[i] = model.Vertex{
			Position:   mmath.NewVec3(float64(i), 1, 2),
			Normal:     mmath.NewVec3(0, 0, 1),
			UV:         mmath.Vec2{X: 0.25, Y: 0.25},
			Influences: influences,
		}
	}
	for i := 0; i+2 < vertexCount; i += 3 {
		submesh.Indices = append(submesh.Indices, i, i+1, i+2)
	}
	return submesh
}

// newTestComposite は胴体3本・頭部2本の合成アバターとメッシュを生成する。
func newTestComposite(t *testing.T) (*model.CompositeAvatar, *model.CompositeMesh) {
	t.Helper()
	body, err := model.BuildBoneHierarchy(newTestAvatar("body", []string{"root", "root/spine", "root/spine/neck"}, []int{-1, 0, 1}))
	if err != nil {
		t.Fatalf("body build failed: %v", err)
	}
	head, err := model.BuildBoneHierarchy(newTestAvatar("head", []string{"root/spine/neck", "root/spine/neck/head_tip"}, []int{-1, 0}))
	if err != nil {
		t.Fatalf("head build failed: %v", err)
	}
	avatar, err := model.MergeAvatars(body, head, "root/spine/neck")
	if err != nil {
		t.Fatalf("merge avatars failed: %v", err)
	}

	bodyMesh := &model.Mesh{Name: "body", Submeshes: []model.Submesh{
		newTestSubmesh("skin", 6, []model.Influence{{BoneIndex: 1, Weight: 1}}),
		newTestSubmesh("cloth", 3, []model.Influence{{BoneIndex: 0, Weight: 0.4}, {BoneIndex: 1, Weight: 0.6}}),
	}}
	headMesh := &model.Mesh{Name: "head", Submeshes: []model.Submesh{
		newTestSubmesh("face", 3, []model.Influence{{BoneIndex: 1, Weight: 1}}),
	}}
	mesh, err := model.MergeMeshes([]*model.Mesh{bodyMesh, headMesh}, avatar.Remap)
	if err != nil {
		t.Fatalf("merge meshes failed: %v", err)
	}
	return avatar, mesh
}

func TestPmxWriterRoundTrip(t *testing.T) {
	avatar, mesh := newTestComposite(t)
	writer := NewPmxWriter(Options{ModelName: "テスト", TextureRoot: "tex"})

	encoded, err := writer.Encode(avatar, mesh)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Read(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if decoded.Name != "テスト" || decoded.EnglishName != "テスト" {
		t.Fatalf("model name mismatch: %s %s", decoded.Name, decoded.EnglishName)
	}
	if len(decoded.Vertices) != mesh.VertexCount {
		t.Fatalf("vertex count mismatch: got=%d want=%d", len(decoded.Vertices), mesh.VertexCount)
	}
	wantParents := []int{-1, 0, 1, 2}
	parents := decoded.ParentIndexes()
	if len(parents) != len(wantParents) {
		t.Fatalf("bone count mismatch: %d", len(parents))
	}
	for i := range wantParents {
		if parents[i] != wantParents[i] {
			t.Fatalf("parent mismatch at %d: got=%d want=%d", i, parents[i], wantParents[i])
		}
		if decoded.Bones[i].EnglishName != avatar.Hierarchy.Bones[i].Path {
			t.Fatalf("english name mismatch at %d: %s", i, decoded.Bones[i].EnglishName)
		}
	}
	if decoded.Bones[3].Name != "head_tip" {
		t.Fatalf("bone name mismatch: %s", decoded.Bones[3].Name)
	}
	if decoded.Bones[0].TailIndex != 1 || decoded.Bones[3].TailIndex != -1 {
		t.Fatalf("tail mismatch: %d %d", decoded.Bones[0].TailIndex, decoded.Bones[3].TailIndex)
	}
	if decoded.Bones[0].Flag&BONE_FLAG_CAN_TRANSLATE == 0 || decoded.Bones[1].Flag&BONE_FLAG_CAN_TRANSLATE != 0 {
		t.Fatalf("translate flag mismatch")
	}
	if math.Abs(float64(decoded.Bones[3].Position.Y())-5.0) > 1e-4 {
		t.Fatalf("bone position mismatch: %v", decoded.Bones[3].Position)
	}

	if len(decoded.Materials) != 3 {
		t.Fatalf("material count mismatch: %d", len(decoded.Materials))
	}
	totalIndexCount := 0
	for i, material := range decoded.Materials {
		if material.IndexCount != len(mesh.Submeshes[i].Indices) {
			t.Fatalf("material index count mismatch at %d: %d", i, material.IndexCount)
		}
		if material.ToonIndex != len(decoded.Textures)-1 {
			t.Fatalf("toon index mismatch at %d: %d", i, material.ToonIndex)
		}
		totalIndexCount += material.IndexCount
	}
	if len(decoded.Faces)*3 != totalIndexCount {
		t.Fatalf("face count mismatch: %d", len(decoded.Faces))
	}
	wantTextures := []string{`tex\skin.png`, `tex\cloth.png`, `tex\face.png`, `tex\toon_default.bmp`}
	for i := range wantTextures {
		if decoded.Textures[i] != wantTextures[i] {
			t.Fatalf("texture mismatch at %d: %s", i, decoded.Textures[i])
		}
	}
	if len(decoded.DisplaySlots) != 3 || decoded.DisplaySlots[0].Name != DISPLAY_SLOT_ROOT || decoded.DisplaySlots[1].Name != DISPLAY_SLOT_MORPH {
		t.Fatalf("display slot mismatch: %+v", decoded.DisplaySlots)
	}
	if decoded.MorphCount != 0 || decoded.RigidCount != 0 || decoded.JointCount != 0 {
		t.Fatalf("trailing blocks should be empty")
	}

	headVertex := decoded.Vertices[9]
	if headVertex.Deform.Type != DEFORM_BDEF1 || headVertex.Deform.BoneIndexes[0] != 3 {
		t.Fatalf("head vertex should follow remap: %+v", headVertex.Deform)
	}
}

func TestPmxWriterConvertsCoordinates(t *testing.T) {
	avatar, mesh := newTestComposite(t)
	pmxModel, _, err := BuildPmxModel(avatar, mesh, Options{Scale: 1})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	vertex := pmxModel.Vertices[1]
	if vertex.Position != (mgl32.Vec3{1, 1, -2}) {
		t.Fatalf("position should be z mirrored: %v", vertex.Position)
	}
	if vertex.Normal != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("normal should be z mirrored: %v", vertex.Normal)
	}
	if vertex.UV != (mgl32.Vec2{0.25, 0.75}) {
		t.Fatalf("uv should be flipped: %v", vertex.UV)
	}
	if pmxModel.Faces[0] != [3]int{0, 2, 1} {
		t.Fatalf("winding should be reversed: %v", pmxModel.Faces[0])
	}
	if pmxModel.Faces[3] != [3]int{9, 11, 10} {
		t.Fatalf("head faces should be offset: %v", pmxModel.Faces[3])
	}
}

func TestBuildDeformKeepsTopTwo(t *testing.T) {
	deform, warningID, err := buildDeform([]model.Influence{
		{BoneIndex: 2, Weight: 0.2},
		{BoneIndex: 0, Weight: 0.5},
		{BoneIndex: 1, Weight: 0.3},
	}, 3)
	if err != nil {
		t.Fatalf("build deform failed: %v", err)
	}
	if deform.Type != DEFORM_BDEF2 || deform.BoneIndexes != [2]int{0, 1} {
		t.Fatalf("deform mismatch: %+v", deform)
	}
	if math.Abs(float64(deform.Weight0)-0.625) > 1e-6 {
		t.Fatalf("weight should be renormalized: %v", deform.Weight0)
	}
	if warningID != model.WarningWeightsTruncated {
		t.Fatalf("warning mismatch: %s", warningID)
	}
}

func TestBuildDeformRenormalizesRawWeights(t *testing.T) {
	deform, warningID, err := buildDeform([]model.Influence{{BoneIndex: 0, Weight: 3}, {BoneIndex: 1, Weight: 1}}, 2)
	if err != nil || warningID != "" {
		t.Fatalf("build deform failed: %s %v", warningID, err)
	}
	if math.Abs(float64(deform.Weight0)-0.75) > 1e-6 {
		t.Fatalf("weights should sum to one: %v", deform.Weight0)
	}
}

func TestBuildDeformEdgeCases(t *testing.T) {
	deform, warningID, err := buildDeform([]model.Influence{{BoneIndex: 2, Weight: 0.5}, {BoneIndex: 1, Weight: 0.5}}, 3)
	if err != nil || deform.BoneIndexes != [2]int{1, 2} || warningID != "" {
		t.Fatalf("tie should prefer lower index: %+v %s %v", deform, warningID, err)
	}

	deform, _, err = buildDeform([]model.Influence{{BoneIndex: 1, Weight: 0.3}, {BoneIndex: 1, Weight: 0.3}, {BoneIndex: 0, Weight: 0.4}}, 2)
	if err != nil || deform.BoneIndexes != [2]int{1, 0} || math.Abs(float64(deform.Weight0)-0.6) > 1e-6 {
		t.Fatalf("same bone should be summed: %+v %v", deform, err)
	}

	deform, warningID, err = buildDeform(nil, 3)
	if err != nil || deform.Type != DEFORM_BDEF1 || deform.BoneIndexes[0] != 0 || warningID != model.WarningVertexWithoutInfluence {
		t.Fatalf("empty influences should fall back to bone 0: %+v %s %v", deform, warningID, err)
	}

	deform, _, err = buildDeform([]model.Influence{{BoneIndex: 2, Weight: 0.7}, {BoneIndex: 1, Weight: 0}}, 3)
	if err != nil || deform.Type != DEFORM_BDEF1 || deform.BoneIndexes[0] != 2 {
		t.Fatalf("single effective influence should be bdef1: %+v %v", deform, err)
	}

	if _, _, err := buildDeform([]model.Influence{{BoneIndex: 0, Weight: math.NaN()}}, 3); !merr.IsUnsupportedFormat(err) {
		t.Fatalf("nan weight should fail: %v", err)
	}
	if _, _, err := buildDeform([]model.Influence{{BoneIndex: 0, Weight: -0.1}}, 3); !merr.IsUnsupportedFormat(err) {
		t.Fatalf("negative weight should fail: %v", err)
	}
	if _, _, err := buildDeform([]model.Influence{{BoneIndex: 3, Weight: 1}}, 3); !merr.IsIndexConsistency(err) {
		t.Fatalf("out of range bone should fail: %v", err)
	}
}

func TestResolveIndexSize(t *testing.T) {
	cases := []struct {
		count    int
		unsigned bool
		want     int
	}{
		{count: 0, unsigned: false, want: 1},
		{count: 127, unsigned: false, want: 1},
		{count: 128, unsigned: false, want: 2},
		{count: 32767, unsigned: false, want: 2},
		{count: 32768, unsigned: false, want: 4},
		{count: 255, unsigned: true, want: 1},
		{count: 256, unsigned: true, want: 2},
		{count: 65535, unsigned: true, want: 2},
		{count: 65536, unsigned: true, want: 4},
	}
	for _, tc := range cases {
		if got := resolveIndexSize(tc.count, tc.unsigned); got != tc.want {
			t.Fatalf("index size mismatch: count=%d unsigned=%v got=%d want=%d", tc.count, tc.unsigned, got, tc.want)
		}
	}
}

func TestPmxWriterLargeVertexIndexSize(t *testing.T) {
	avatar, _ := newTestComposite(t)
	bodyMesh := &model.Mesh{Name: "body", Submeshes: []model.Submesh{
		newTestSubmesh("big", 300, []model.Influence{{BoneIndex: 0, Weight: 1}}),
	}}
	mesh, err := model.MergeMeshes([]*model.Mesh{bodyMesh}, nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	encoded, err := NewPmxWriter(Options{}).Encode(avatar, mesh)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Read(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if decoded.Header.VertexIndexSize != 2 || decoded.Header.BoneIndexSize != 1 {
		t.Fatalf("index size mismatch: %+v", decoded.Header)
	}
	if last := decoded.Faces[len(decoded.Faces)-1]; last != [3]int{297, 299, 298} {
		t.Fatalf("last face mismatch: %v", last)
	}
}

func TestTexturePath(t *testing.T) {
	if got := TexturePath("tex", "a.png"); got != `tex\a.png` {
		t.Fatalf("path mismatch: %s", got)
	}
	if got := TexturePath(`tex\mltd\`, "a.png"); got != `tex\mltd\a.png` {
		t.Fatalf("path mismatch: %s", got)
	}
	if got := TexturePath("", "a.png"); got != "a.png" {
		t.Fatalf("path mismatch: %s", got)
	}
	if got := SubmeshTextureName(model.Submesh{Name: "hair", TextureName: "hair_col.png"}); got != "hair_col.png" {
		t.Fatalf("texture name mismatch: %s", got)
	}
}

func TestPmxWriterRequiresAvatar(t *testing.T) {
	_, mesh := newTestComposite(t)
	if _, err := NewPmxWriter(Options{}).Encode(nil, mesh); !merr.IsMissingAsset(err) {
		t.Fatalf("expected missing asset, got %v", err)
	}
	if _, err := Read(bytes.NewReader([]byte("PMD "))); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPmxWriterFitsBoneNames(t *testing.T) {
	body, err := model.BuildBoneHierarchy(newTestAvatar(
		"body",
		[]string{"root", "root/あいうえおかきくけこ", "root/あいうえおかきさしす"},
		[]int{-1, 0, 0},
	))
	if err != nil {
		t.Fatalf("body build failed: %v", err)
	}
	head, err := model.BuildBoneHierarchy(newTestAvatar("head", []string{"root"}, []int{-1}))
	if err != nil {
		t.Fatalf("head build failed: %v", err)
	}
	avatar, err := model.MergeAvatars(body, head, "root")
	if err != nil {
		t.Fatalf("merge avatars failed: %v", err)
	}

	writer := NewPmxWriter(Options{})
	encoded, err := writer.Encode(avatar, &model.CompositeMesh{})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Read(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	want := []string{"root", "あいうえおかき", "あいうえおか_1"}
	for i, name := range want {
		if decoded.Bones[i].Name != name {
			t.Fatalf("bone name mismatch at %d: got=%s want=%s", i, decoded.Bones[i].Name, name)
		}
	}
	if writer.Warnings()[model.WarningBoneNameTruncated] != 2 {
		t.Fatalf("truncation warning mismatch: %v", writer.Warnings())
	}
}
