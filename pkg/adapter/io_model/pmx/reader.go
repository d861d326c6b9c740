// 指示: miu200521358
package pmx

import (
	"io"

	"github.com/miu200521358/mu_mltd2mmd/pkg/adapter/io_common"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// Read はPMX 2.0を読み込む。表情・剛体・ジョイントは件数のみ保持する。
func Read(r io.Reader) (*PmxModel, error) {
	d := &pmxDecoder{br: io_common.NewBinaryReader(r)}
	pmxModel := &PmxModel{}
	if err := d.readHeader(pmxModel); err != nil {
		return nil, err
	}
	d.readVertices(pmxModel)
	d.readFaces(pmxModel)
	d.readTextures(pmxModel)
	d.readMaterials(pmxModel)
	d.readBones(pmxModel)
	pmxModel.MorphCount = d.br.ReadCount("表情")
	if d.err == nil && pmxModel.MorphCount > 0 {
		d.err = merr.NewUnsupportedFormat("表情付きPMXの読み込みは未対応です: morphs=%d", nil, pmxModel.MorphCount)
	}
	if d.err == nil {
		d.readDisplaySlots(pmxModel)
		pmxModel.RigidCount = d.br.ReadCount("剛体")
		pmxModel.JointCount = d.br.ReadCount("ジョイント")
	}

	if d.err != nil {
		return nil, d.err
	}
	if err := d.br.Err(); err != nil {
		return nil, err
	}
	return pmxModel, nil
}

// pmxDecoder はヘッダのindexサイズに従って各ブロックを読み込む。
type pmxDecoder struct {
	br     *io_common.BinaryReader
	header Header
	err    error
}

func (d *pmxDecoder) failed() bool {
	return d.err != nil || d.br.Err() != nil
}

func (d *pmxDecoder) readText() string {
	size := d.br.ReadCount("文字列")
	if d.failed() {
		return ""
	}
	value, err := io_common.DecodeUTF16LE(d.br.ReadBytes(size))
	if err != nil && d.err == nil {
		d.err = err
	}
	return value
}

func (d *pmxDecoder) readHeader(pmxModel *PmxModel) error {
	signature := d.br.ReadBytes(len(PMX_SIGNATURE))
	if err := d.br.Err(); err != nil {
		return err
	}
	if string(signature) != PMX_SIGNATURE {
		return merr.NewIoParseFailed("PMXの識別子が不正です: %q", nil, string(signature))
	}
	version := d.br.ReadFloat32()
	if version != PMX_VERSION {
		return merr.NewUnsupportedFormat("PMXバージョンが未対応です: %v", nil, version)
	}
	globalsCount := int(d.br.ReadUint8())
	globals := d.br.ReadBytes(globalsCount)
	if err := d.br.Err(); err != nil {
		return err
	}
	if globalsCount < pmxGlobalsCount {
		return merr.NewIoParseFailed("PMXのグローバル設定数が不足しています: %d", nil, globalsCount)
	}
	if globals[0] != pmxEncodingUTF16 {
		return merr.NewUnsupportedFormat("PMXの文字コードが未対応です: %d", nil, globals[0])
	}
	d.header = Header{
		Version:           version,
		Encoding:          globals[0],
		AdditionalUVCount: globals[1],
		VertexIndexSize:   int(globals[2]),
		TextureIndexSize:  int(globals[3]),
		MaterialIndexSize: int(globals[4]),
		BoneIndexSize:     int(globals[5]),
		MorphIndexSize:    int(globals[6]),
		RigidIndexSize:    int(globals[7]),
	}
	pmxModel.Header = d.header
	pmxModel.Name = d.readText()
	pmxModel.EnglishName = d.readText()
	pmxModel.Comment = d.readText()
	pmxModel.EnglishComment = d.readText()
	if d.err != nil {
		return d.err
	}
	return d.br.Err()
}

func (d *pmxDecoder) readVertices(pmxModel *PmxModel) {
	count := d.br.ReadCount("頂点")
	for i := 0; i < count && !d.failed(); i++ {
		vertex := Vertex{
			Position: d.br.ReadVec3(),
			Normal:   d.br.ReadVec3(),
			UV:       d.br.ReadVec2(),
		}
		for j := 0; j < int(d.header.AdditionalUVCount); j++ {
			d.br.ReadVec4()
		}
		vertex.Deform.Type = DeformType(d.br.ReadUint8())
		switch vertex.Deform.Type {
		case DEFORM_BDEF1:
			vertex.Deform.BoneIndexes[0] = d.br.ReadIndex(d.header.BoneIndexSize, false)
			vertex.Deform.Weight0 = 1
		case DEFORM_BDEF2:
			vertex.Deform.BoneIndexes[0] = d.br.ReadIndex(d.header.BoneIndexSize, false)
			vertex.Deform.BoneIndexes[1] = d.br.ReadIndex(d.header.BoneIndexSize, false)
			vertex.Deform.Weight0 = d.br.ReadFloat32()
		default:
			if d.err == nil {
				d.err = merr.NewUnsupportedFormat("頂点変形方式が未対応です: vertex=%d type=%d", nil, i, vertex.Deform.Type)
			}
			return
		}
		vertex.EdgeScale = d.br.ReadFloat32()
		pmxModel.Vertices = append(pmxModel.Vertices, vertex)
	}
}

func (d *pmxDecoder) readFaces(pmxModel *PmxModel) {
	count := d.br.ReadCount("面")
	if d.failed() {
		return
	}
	if count%3 != 0 {
		d.err = merr.NewIoParseFailed("面インデックス数が3の倍数ではありません: %d", nil, count)
		return
	}
	for i := 0; i < count/3 && !d.failed(); i++ {
		pmxModel.Faces = append(pmxModel.Faces, [3]int{
			d.br.ReadIndex(d.header.VertexIndexSize, true),
			d.br.ReadIndex(d.header.VertexIndexSize, true),
			d.br.ReadIndex(d.header.VertexIndexSize, true),
		})
	}
}

func (d *pmxDecoder) readTextures(pmxModel *PmxModel) {
	count := d.br.ReadCount("テクスチャ")
	for i := 0; i < count && !d.failed(); i++ {
		pmxModel.Textures = append(pmxModel.Textures, d.readText())
	}
}

func (d *pmxDecoder) readMaterials(pmxModel *PmxModel) {
	count := d.br.ReadCount("材質")
	for i := 0; i < count && !d.failed(); i++ {
		material := Material{
			Name:        d.readText(),
			EnglishName: d.readText(),
			Diffuse:     d.br.ReadVec4(),
			Specular:    d.br.ReadVec4(),
			Ambient:     d.br.ReadVec3(),
			DrawFlag:    d.br.ReadUint8(),
			Edge:        d.br.ReadVec4(),
			EdgeSize:    d.br.ReadFloat32(),
		}
		material.TextureIndex = d.br.ReadIndex(d.header.TextureIndexSize, false)
		material.SphereIndex = d.br.ReadIndex(d.header.TextureIndexSize, false)
		material.SphereMode = d.br.ReadUint8()
		material.ToonSharing = d.br.ReadUint8()
		if material.ToonSharing == 0 {
			material.ToonIndex = d.br.ReadIndex(d.header.TextureIndexSize, false)
		} else {
			material.ToonIndex = int(d.br.ReadUint8())
		}
		material.Memo = d.readText()
		material.IndexCount = int(d.br.ReadInt32())
		pmxModel.Materials = append(pmxModel.Materials, material)
	}
}

func (d *pmxDecoder) readBones(pmxModel *PmxModel) {
	count := d.br.ReadCount("ボーン")
	for i := 0; i < count && !d.failed(); i++ {
		bone := Bone{
			Name:        d.readText(),
			EnglishName: d.readText(),
			Position:    d.br.ReadVec3(),
			ParentIndex: d.br.ReadIndex(d.header.BoneIndexSize, false),
			Layer:       int(d.br.ReadInt32()),
			Flag:        d.br.ReadUint16(),
			TailIndex:   -1,
		}
		if bone.Flag&BONE_FLAG_TAIL_IS_BONE != 0 {
			bone.TailIndex = d.br.ReadIndex(d.header.BoneIndexSize, false)
		} else {
			bone.TailOffset = d.br.ReadVec3()
		}
		d.skipBoneExtensions(bone.Flag)
		pmxModel.Bones = append(pmxModel.Bones, bone)
	}
}

// skipBoneExtensions は付与・軸制限・IKなど保持しない拡張項目を読み飛ばす。
func (d *pmxDecoder) skipBoneExtensions(flag uint16) {
	if flag&(BONE_FLAG_IS_EXTERNAL_ROTATION|BONE_FLAG_IS_EXTERNAL_TRANSLATION) != 0 {
		d.br.ReadIndex(d.header.BoneIndexSize, false)
		d.br.ReadFloat32()
	}
	if flag&BONE_FLAG_HAS_FIXED_AXIS != 0 {
		d.br.ReadVec3()
	}
	if flag&BONE_FLAG_HAS_LOCAL_AXIS != 0 {
		d.br.ReadVec3()
		d.br.ReadVec3()
	}
	if flag&BONE_FLAG_IS_EXTERNAL_PARENT_DEFORM != 0 {
		d.br.ReadInt32()
	}
	if flag&BONE_FLAG_IS_IK != 0 {
		d.br.ReadIndex(d.header.BoneIndexSize, false)
		d.br.ReadInt32()
		d.br.ReadFloat32()
		links := d.br.ReadCount("IKリンク")
		for i := 0; i < links && !d.failed(); i++ {
			d.br.ReadIndex(d.header.BoneIndexSize, false)
			if d.br.ReadUint8() == 1 {
				d.br.ReadVec3()
				d.br.ReadVec3()
			}
		}
	}
}

func (d *pmxDecoder) readDisplaySlots(pmxModel *PmxModel) {
	count := d.br.ReadCount("表示枠")
	for i := 0; i < count && !d.failed(); i++ {
		slot := DisplaySlot{
			Name:        d.readText(),
			EnglishName: d.readText(),
			Special:     d.br.ReadUint8(),
		}
		elements := d.br.ReadCount("表示枠要素")
		for j := 0; j < elements && !d.failed(); j++ {
			if d.br.ReadUint8() == 0 {
				slot.BoneIndexes = append(slot.BoneIndexes, d.br.ReadIndex(d.header.BoneIndexSize, false))
				continue
			}
			d.br.ReadIndex(d.header.MorphIndexSize, false)
		}
		pmxModel.DisplaySlots = append(pmxModel.DisplaySlots, slot)
	}
}
