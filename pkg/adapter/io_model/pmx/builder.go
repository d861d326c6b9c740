// 指示: miu200521358
package pmx

import (
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const (
	// DEFAULT_SCALE はメートル単位をMMD単位へ変換する既定倍率。
	DEFAULT_SCALE = 12.5
	// DEFAULT_TOON_TEXTURE_NAME は全材質が参照する個別トゥーン名。
	DEFAULT_TOON_TEXTURE_NAME = "toon_default.bmp"
	// DISPLAY_SLOT_ROOT はルート表示枠名。
	DISPLAY_SLOT_ROOT = "Root"
	// DISPLAY_SLOT_MORPH は表情表示枠名。
	DISPLAY_SLOT_MORPH = "表情"
	// DISPLAY_SLOT_BONES はルート以外のボーン表示枠名。
	DISPLAY_SLOT_BONES = "ボーン"
	// maxDeformBones はBDEF2で保持するボーン数。
	maxDeformBones = 2
)

// Options はPMX出力設定を表す。
type Options struct {
	ModelName       string
	EnglishName     string
	Comment         string
	TextureRoot     string
	ToonTextureName string
	Scale           float64
}

// withDefaults は未設定項目を既定値で補った設定を返す。
func (o Options) withDefaults() Options {
	if o.Scale == 0 {
		o.Scale = DEFAULT_SCALE
	}
	if strings.TrimSpace(o.ToonTextureName) == "" {
		o.ToonTextureName = DEFAULT_TOON_TEXTURE_NAME
	}
	if o.EnglishName == "" {
		o.EnglishName = o.ModelName
	}
	return o
}

// TexturePath はテクスチャルートと名前を "\" で連結する。
func TexturePath(root string, name string) string {
	root = strings.TrimRight(strings.TrimSpace(root), `\/`)
	if root == "" {
		return name
	}
	return root + `\` + name
}

// SubmeshTextureName はサブメッシュの参照テクスチャ名を返す。未指定時はサブメッシュ名+".png"。
func SubmeshTextureName(submesh model.Submesh) string {
	if name := strings.TrimSpace(submesh.TextureName); name != "" {
		return name
	}
	return submesh.Name + ".png"
}

// BuildPmxModel は合成済みアバターとメッシュからPMXモデルを構築する。
func BuildPmxModel(
	avatar *model.CompositeAvatar,
	mesh *model.CompositeMesh,
	options Options,
) (*PmxModel, model.ConversionWarnings, error) {
	if avatar == nil || avatar.BoneCount() == 0 {
		return nil, nil, merr.NewMissingAsset("PMX出力対象のアバターがありません", nil)
	}
	if mesh == nil {
		return nil, nil, merr.NewMissingAsset("PMX出力対象のメッシュがありません", nil)
	}
	options = options.withDefaults()
	warnings := model.ConversionWarnings{}

	pmxModel := &PmxModel{
		Name:           options.ModelName,
		EnglishName:    options.EnglishName,
		Comment:        options.Comment,
		EnglishComment: options.Comment,
	}

	boneCount := avatar.BoneCount()
	names, truncatedNames, err := io_common.BoneNames(avatar.Hierarchy)
	if err != nil {
		return nil, nil, err
	}
	if truncatedNames > 0 {
		warnings.Add(model.WarningBoneNameTruncated, truncatedNames)
		logPmxWarn("ボーン名が%dバイトを超えるため切り詰めました: count=%d", io_common.BONE_NAME_BYTE_SIZE, truncatedNames)
	}
	pmxModel.Bones = buildBones(avatar.Hierarchy, names, options.Scale)
	for si, submesh := range mesh.Submeshes {
		for vi, vertex := range submesh.Vertices {
			deform, warningID, err := buildDeform(vertex.Influences, boneCount)
			if err != nil {
				return nil, nil, merr.NewUnsupportedFormat(
					"頂点ウェイトを変換できません: submesh=%d(%s) vertex=%d", err, si, submesh.Name, vi,
				)
			}
			if warningID != "" {
				warnings.Add(warningID, 1)
			}
			pmxModel.Vertices = append(pmxModel.Vertices, buildVertex(vertex, deform, options.Scale))
		}
	}
	if count := warnings[model.WarningVertexWithoutInfluence]; count > 0 {
		logPmxWarn("ボーン影響の無い頂点をボーン0へ割り当てました: count=%d", count)
	}
	if count := warnings[model.WarningWeightsTruncated]; count > 0 {
		logPmxDebug("3本以上のボーン影響を上位2本へ切り詰めました: count=%d", count)
	}

	textureIndexes := map[string]int{}
	for _, submesh := range mesh.Submeshes {
		global := submesh.GlobalIndices()
		for _, index := range global {
			if index < 0 || index >= len(pmxModel.Vertices) {
				return nil, nil, merr.NewIndexConsistency(
					"面インデックスが頂点数の範囲外です: submesh=%s index=%d vertices=%d",
					nil, submesh.Name, index, len(pmxModel.Vertices),
				)
			}
		}
		for i := 0; i+2 < len(global); i += 3 {
			// Z反転で座標系の向きが変わるため、巻き順を入れ替える。
			pmxModel.Faces = append(pmxModel.Faces, [3]int{global[i], global[i+2], global[i+1]})
		}

		texturePath := TexturePath(options.TextureRoot, SubmeshTextureName(submesh.Submesh))
		textureIndex, ok := textureIndexes[texturePath]
		if !ok {
			textureIndex = len(pmxModel.Textures)
			pmxModel.Textures = append(pmxModel.Textures, texturePath)
			textureIndexes[texturePath] = textureIndex
		}
		pmxModel.Materials = append(pmxModel.Materials, newMaterial(submesh.Name, textureIndex, len(submesh.Indices)))
	}

	toonIndex := len(pmxModel.Textures)
	pmxModel.Textures = append(pmxModel.Textures, TexturePath(options.TextureRoot, options.ToonTextureName))
	for i := range pmxModel.Materials {
		pmxModel.Materials[i].ToonIndex = toonIndex
	}

	pmxModel.DisplaySlots = buildDisplaySlots(pmxModel.Bones)
	pmxModel.Header = Header{
		Version:           PMX_VERSION,
		Encoding:          pmxEncodingUTF16,
		VertexIndexSize:   resolveIndexSize(len(pmxModel.Vertices), true),
		TextureIndexSize:  resolveIndexSize(len(pmxModel.Textures), false),
		MaterialIndexSize: resolveIndexSize(len(pmxModel.Materials), false),
		BoneIndexSize:     resolveIndexSize(len(pmxModel.Bones), false),
		MorphIndexSize:    resolveIndexSize(0, false),
		RigidIndexSize:    resolveIndexSize(0, false),
	}

	logPmxInfo(
		"PMX構築完了: bones=%d vertices=%d faces=%d materials=%d textures=%d",
		len(pmxModel.Bones), len(pmxModel.Vertices), len(pmxModel.Faces), len(pmxModel.Materials), len(pmxModel.Textures),
	)
	return pmxModel, warnings, nil
}

// buildBones は骨格からPMXボーンを構築する。位置はワールドのレスト位置。
// names はボーンindex順のボーン名。
func buildBones(hierarchy *model.BoneHierarchy, names []string, scale float64) []Bone {
	bones := make([]Bone, hierarchy.Len())
	for i, node := range hierarchy.Bones {
		flag := BONE_FLAG_CAN_ROTATE | BONE_FLAG_IS_VISIBLE | BONE_FLAG_CAN_MANIPULATE
		if node.IsRoot() {
			flag |= BONE_FLAG_CAN_TRANSLATE
		}
		bones[i] = Bone{
			Name:        names[i],
			EnglishName: node.Path,
			Position:    toPmxPosition(node.WorldTranslation, scale),
			ParentIndex: node.ParentIndex,
			Flag:        flag,
			TailIndex:   -1,
		}
	}

	for i := range bones {
		children := hierarchy.Children(i)
		if len(children) > 0 {
			bones[i].TailIndex = children[0]
			bones[i].Flag |= BONE_FLAG_TAIL_IS_BONE
			continue
		}
		bones[i].TailOffset = generateTailOffset(bones, i)
	}
	return bones
}

// generateTailOffset は子無しボーン向けに親からの方向で表示先を算出する。
func generateTailOffset(bones []Bone, index int) mgl32.Vec3 {
	fallback := mgl32.Vec3{0, 0.1, 0}
	parentIndex := bones[index].ParentIndex
	if parentIndex < 0 {
		return fallback
	}
	direction := bones[index].Position.Sub(bones[parentIndex].Position)
	length := direction.Len()
	if length <= 0 {
		return fallback
	}
	return direction.Normalize().Mul(length * 0.5)
}

// buildDisplaySlots はルート枠・表情枠・ボーン枠を構築する。
func buildDisplaySlots(bones []Bone) []DisplaySlot {
	root := DisplaySlot{Name: DISPLAY_SLOT_ROOT, EnglishName: DISPLAY_SLOT_ROOT, Special: 1}
	morph := DisplaySlot{Name: DISPLAY_SLOT_MORPH, EnglishName: "Exp", Special: 1}
	others := DisplaySlot{Name: DISPLAY_SLOT_BONES, EnglishName: "Bones"}
	for i, bone := range bones {
		if bone.ParentIndex < 0 {
			root.BoneIndexes = append(root.BoneIndexes, i)
			continue
		}
		others.BoneIndexes = append(others.BoneIndexes, i)
	}
	slots := []DisplaySlot{root, morph}
	if len(others.BoneIndexes) > 0 {
		slots = append(slots, others)
	}
	return slots
}

// buildVertex は頂点を座標変換してPMX頂点にする。UVは上下を反転する。
func buildVertex(vertex model.Vertex, deform Deform, scale float64) Vertex {
	return Vertex{
		Position:  toPmxPosition(vertex.Position, scale),
		Normal:    toPmxPosition(vertex.Normal, 1),
		UV:        mgl32.Vec2{float32(vertex.UV.X), float32(1 - vertex.UV.Y)},
		Deform:    deform,
		EdgeScale: 1,
	}
}

// toPmxPosition はZ反転と倍率を適用してfloat32へ変換する。
func toPmxPosition(v mmath.Vec3, scale float64) mgl32.Vec3 {
	mirrored := mmath.MirrorZ(v).MuledScalar(scale)
	return mgl32.Vec3{float32(mirrored.X), float32(mirrored.Y), float32(mirrored.Z)}
}

// weightedBone はウェイト集計用のボーン影響を表す。
type weightedBone struct {
	BoneIndex int
	Weight    float64
}

// buildDeform はボーン影響からBDEF1/BDEF2を決める。
// 同一ボーンは合算し、上位2本を残して正規化する。同ウェイトはボーンindexの小さい方を優先する。
func buildDeform(influences []model.Influence, boneCount int) (Deform, string, error) {
	weightByBone := map[int]float64{}
	for _, influence := range influences {
		if math.IsNaN(influence.Weight) || math.IsInf(influence.Weight, 0) || influence.Weight < 0 {
			return Deform{}, "", merr.NewUnsupportedFormat("ウェイトが不正です: bone=%d weight=%v", nil, influence.BoneIndex, influence.Weight)
		}
		if influence.BoneIndex < 0 || influence.BoneIndex >= boneCount {
			return Deform{}, "", merr.NewIndexConsistency("ボーンindexが範囲外です: bone=%d bones=%d", nil, influence.BoneIndex, boneCount)
		}
		if influence.Weight == 0 {
			continue
		}
		weightByBone[influence.BoneIndex] += influence.Weight
	}

	if len(weightByBone) == 0 {
		return Deform{Type: DEFORM_BDEF1, BoneIndexes: [2]int{0, 0}, Weight0: 1}, model.WarningVertexWithoutInfluence, nil
	}

	weightedBones := make([]weightedBone, 0, len(weightByBone))
	for boneIndex, weight := range weightByBone {
		weightedBones = append(weightedBones, weightedBone{BoneIndex: boneIndex, Weight: weight})
	}
	sort.Slice(weightedBones, func(i int, j int) bool {
		if weightedBones[i].Weight == weightedBones[j].Weight {
			return weightedBones[i].BoneIndex < weightedBones[j].BoneIndex
		}
		return weightedBones[i].Weight > weightedBones[j].Weight
	})

	if len(weightedBones) == 1 {
		return Deform{Type: DEFORM_BDEF1, BoneIndexes: [2]int{weightedBones[0].BoneIndex, 0}, Weight0: 1}, "", nil
	}

	warningID := ""
	if len(weightedBones) > maxDeformBones {
		weightedBones = weightedBones[:maxDeformBones]
		warningID = model.WarningWeightsTruncated
	}
	weights := []float64{weightedBones[0].Weight, weightedBones[1].Weight}
	floats.Scale(1/floats.Sum(weights), weights)
	return Deform{
		Type:        DEFORM_BDEF2,
		BoneIndexes: [2]int{weightedBones[0].BoneIndex, weightedBones[1].BoneIndex},
		Weight0:     float32(weights[0]),
	}, warningID, nil
}

// newMaterial はサブメッシュ1件分の材質を既定値で生成する。
func newMaterial(name string, textureIndex int, indexCount int) Material {
	return Material{
		Name:         name,
		EnglishName:  name,
		Diffuse:      mgl32.Vec4{1, 1, 1, 1},
		Specular:     mgl32.Vec4{0, 0, 0, 1},
		Ambient:      mgl32.Vec3{0.5, 0.5, 0.5},
		DrawFlag:     DRAW_FLAG_GROUND_SHADOW | DRAW_FLAG_DRAWING_ON_SELF_SHADOW_MAPS | DRAW_FLAG_DRAWING_SELF_SHADOWS,
		Edge:         mgl32.Vec4{0, 0, 0, 1},
		EdgeSize:     1,
		TextureIndex: textureIndex,
		SphereIndex:  -1,
		ToonIndex:    -1,
		IndexCount:   indexCount,
	}
}
