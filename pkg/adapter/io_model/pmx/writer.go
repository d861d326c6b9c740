// 指示: miu200521358
package pmx

import (
	"bytes"
	"io"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// PmxWriter は合成済みモデルをPMX 2.0で書き出す。
type PmxWriter struct {
	options  Options
	warnings model.ConversionWarnings
}

// NewPmxWriter はPmxWriterを生成する。
func NewPmxWriter(options Options) *PmxWriter {
	return &PmxWriter{options: options.withDefaults()}
}

// Warnings は直近の書き込みで発生した警告を返す。
func (p *PmxWriter) Warnings() model.ConversionWarnings {
	return p.warnings
}

// Write はアバターとメッシュをPMXとして w へ書き出す。
func (p *PmxWriter) Write(w io.Writer, avatar *model.CompositeAvatar, mesh *model.CompositeMesh) error {
	pmxModel, warnings, err := BuildPmxModel(avatar, mesh, p.options)
	if err != nil {
		return err
	}
	p.warnings = warnings
	return WriteModel(w, pmxModel)
}

// Encode はアバターとメッシュをPMXのバイト列へ変換する。
func (p *PmxWriter) Encode(avatar *model.CompositeAvatar, mesh *model.CompositeMesh) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf, avatar, mesh); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteModel は構築済みPMXモデルを書き出す。
func WriteModel(w io.Writer, pmxModel *PmxModel) error {
	if pmxModel == nil {
		return merr.NewMissingAsset("PMXモデルが未設定です", nil)
	}
	e := &pmxEncoder{bw: io_common.NewBinaryWriter(w), header: pmxModel.Header}
	e.writeHeader(pmxModel)
	e.writeVertices(pmxModel.Vertices)
	e.writeFaces(pmxModel.Faces)
	e.writeTextures(pmxModel.Textures)
	e.writeMaterials(pmxModel.Materials)
	e.writeBones(pmxModel.Bones)
	// 表情
	e.bw.WriteInt32(0)
	e.writeDisplaySlots(pmxModel.DisplaySlots)
	// 剛体・ジョイント
	e.bw.WriteInt32(0)
	e.bw.WriteInt32(0)

	if e.err != nil {
		return e.err
	}
	if err := e.bw.Err(); err != nil {
		return merr.NewIoParseFailed("PMXの書き込みに失敗しました", err)
	}
	logPmxDebug("PMX書き込み完了: bytes=%d", e.bw.Written())
	return nil
}

// pmxEncoder はヘッダのindexサイズに従って各ブロックを書き込む。
type pmxEncoder struct {
	bw     *io_common.BinaryWriter
	header Header
	err    error
}

// writeText は長さ付きUTF-16LE文字列を書き込む。
func (e *pmxEncoder) writeText(value string) {
	if e.err != nil {
		return
	}
	encoded, err := io_common.EncodeUTF16LE(value)
	if err != nil {
		e.err = err
		return
	}
	e.bw.WriteInt32(int32(len(encoded)))
	e.bw.WriteBytes(encoded)
}

func (e *pmxEncoder) writeHeader(pmxModel *PmxModel) {
	e.bw.WriteBytes([]byte(PMX_SIGNATURE))
	e.bw.WriteFloat32(PMX_VERSION)
	e.bw.WriteUint8(pmxGlobalsCount)
	e.bw.WriteUint8(pmxEncodingUTF16)
	e.bw.WriteUint8(e.header.AdditionalUVCount)
	e.bw.WriteUint8(uint8(e.header.VertexIndexSize))
	e.bw.WriteUint8(uint8(e.header.TextureIndexSize))
	e.bw.WriteUint8(uint8(e.header.MaterialIndexSize))
	e.bw.WriteUint8(uint8(e.header.BoneIndexSize))
	e.bw.WriteUint8(uint8(e.header.MorphIndexSize))
	e.bw.WriteUint8(uint8(e.header.RigidIndexSize))
	e.writeText(pmxModel.Name)
	e.writeText(pmxModel.EnglishName)
	e.writeText(pmxModel.Comment)
	e.writeText(pmxModel.EnglishComment)
}

func (e *pmxEncoder) writeVertices(vertices []Vertex) {
	e.bw.WriteInt32(int32(len(vertices)))
	for _, vertex := range vertices {
		e.bw.WriteVec3(vertex.Position)
		e.bw.WriteVec3(vertex.Normal)
		e.bw.WriteVec2(vertex.UV)
		e.bw.WriteUint8(uint8(vertex.Deform.Type))
		switch vertex.Deform.Type {
		case DEFORM_BDEF1:
			e.bw.WriteIndex(e.header.BoneIndexSize, vertex.Deform.BoneIndexes[0], false)
		case DEFORM_BDEF2:
			e.bw.WriteIndex(e.header.BoneIndexSize, vertex.Deform.BoneIndexes[0], false)
			e.bw.WriteIndex(e.header.BoneIndexSize, vertex.Deform.BoneIndexes[1], false)
			e.bw.WriteFloat32(vertex.Deform.Weight0)
		default:
			if e.err == nil {
				e.err = merr.NewUnsupportedFormat("頂点変形方式が未対応です: type=%d", nil, vertex.Deform.Type)
			}
		}
		e.bw.WriteFloat32(vertex.EdgeScale)
	}
}

func (e *pmxEncoder) writeFaces(faces [][3]int) {
	e.bw.WriteInt32(int32(len(faces) * 3))
	for _, face := range faces {
		for _, index := range face {
			e.bw.WriteIndex(e.header.VertexIndexSize, index, true)
		}
	}
}

func (e *pmxEncoder) writeTextures(textures []string) {
	e.bw.WriteInt32(int32(len(textures)))
	for _, texture := range textures {
		e.writeText(texture)
	}
}

func (e *pmxEncoder) writeMaterials(materials []Material) {
	e.bw.WriteInt32(int32(len(materials)))
	for _, material := range materials {
		e.writeText(material.Name)
		e.writeText(material.EnglishName)
		e.bw.WriteVec4(material.Diffuse)
		e.bw.WriteVec4(material.Specular)
		e.bw.WriteVec3(material.Ambient)
		e.bw.WriteUint8(material.DrawFlag)
		e.bw.WriteVec4(material.Edge)
		e.bw.WriteFloat32(material.EdgeSize)
		e.bw.WriteIndex(e.header.TextureIndexSize, material.TextureIndex, false)
		e.bw.WriteIndex(e.header.TextureIndexSize, material.SphereIndex, false)
		e.bw.WriteUint8(material.SphereMode)
		e.bw.WriteUint8(material.ToonSharing)
		if material.ToonSharing == 0 {
			e.bw.WriteIndex(e.header.TextureIndexSize, material.ToonIndex, false)
		} else {
			e.bw.WriteUint8(uint8(material.ToonIndex))
		}
		e.writeText(material.Memo)
		e.bw.WriteInt32(int32(material.IndexCount))
	}
}

func (e *pmxEncoder) writeBones(bones []Bone) {
	e.bw.WriteInt32(int32(len(bones)))
	for _, bone := range bones {
		e.writeText(bone.Name)
		e.writeText(bone.EnglishName)
		e.bw.WriteVec3(bone.Position)
		e.bw.WriteIndex(e.header.BoneIndexSize, bone.ParentIndex, false)
		e.bw.WriteInt32(int32(bone.Layer))
		e.bw.WriteUint16(bone.Flag)
		if bone.Flag&BONE_FLAG_TAIL_IS_BONE != 0 {
			e.bw.WriteIndex(e.header.BoneIndexSize, bone.TailIndex, false)
		} else {
			e.bw.WriteVec3(bone.TailOffset)
		}
	}
}

func (e *pmxEncoder) writeDisplaySlots(slots []DisplaySlot) {
	e.bw.WriteInt32(int32(len(slots)))
	for _, slot := range slots {
		e.writeText(slot.Name)
		e.writeText(slot.EnglishName)
		e.bw.WriteUint8(slot.Special)
		e.bw.WriteInt32(int32(len(slot.BoneIndexes)))
		for _, index := range slot.BoneIndexes {
			// 要素種別 0: ボーン
			e.bw.WriteUint8(0)
			e.bw.WriteIndex(e.header.BoneIndexSize, index, false)
		}
	}
}
