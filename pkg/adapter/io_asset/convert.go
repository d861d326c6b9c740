// 指示: miu200521358
package io_asset

import (
	"path/filepath"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

// toAvatar は骨格ダンプをアバターへ変換する。
func toAvatar(name string, dump avatarDump) (*model.Avatar, error) {
	avatarName := dump.Name
	if avatarName == "" {
		avatarName = name
	}
	avatar := &model.Avatar{
		Name:     avatarName,
		Nodes:    make([]model.AvatarNode, len(dump.Nodes)),
		NodeIDs:  append([]uint32(nil), dump.NodeIDs...),
		PathByID: make(map[uint32]string, len(dump.Paths)),
		RestPose: make([]model.Transform, len(dump.RestPose)),
	}
	for i, node := range dump.Nodes {
		avatar.Nodes[i] = model.AvatarNode{ParentIndex: node.ParentIndex}
	}
	for id, path := range dump.Paths {
		avatar.PathByID[id] = path
	}
	for i, pose := range dump.RestPose {
		translation, err := toVec3(pose.Translation, "rest_pose.translation", i)
		if err != nil {
			return nil, err
		}
		rotation, err := toQuaternion(pose.Rotation, "rest_pose.rotation", i)
		if err != nil {
			return nil, err
		}
		avatar.RestPose[i] = model.Transform{Translation: translation, Rotation: rotation}
	}
	return avatar, nil
}

// toMeshBundle はメッシュダンプをメッシュ群へ変換する。
func toMeshBundle(name string, baseDir string, dump meshBundleDump) (*model.MeshBundle, error) {
	bundle := &model.MeshBundle{
		Name:     name,
		Meshes:   make([]*model.Mesh, 0, len(dump.Meshes)),
		Textures: make([]model.TextureSource, 0, len(dump.Textures)),
	}
	for mi, meshRecord := range dump.Meshes {
		mesh := &model.Mesh{Name: meshRecord.Name, Submeshes: make([]model.Submesh, 0, len(meshRecord.Submeshes))}
		for si, submeshRecord := range meshRecord.Submeshes {
			submesh, err := toSubmesh(submeshRecord)
			if err != nil {
				return nil, merr.NewUnsupportedFormat("サブメッシュの変換に失敗しました: file=%s mesh=%d submesh=%d", err, name, mi, si)
			}
			mesh.Submeshes = append(mesh.Submeshes, submesh)
		}
		bundle.Meshes = append(bundle.Meshes, mesh)
	}
	for _, texture := range dump.Textures {
		if texture.Name == "" {
			continue
		}
		source := texture.Source
		if source != "" && !filepath.IsAbs(source) {
			source = filepath.Join(baseDir, filepath.FromSlash(source))
		}
		bundle.Textures = append(bundle.Textures, model.TextureSource{Name: texture.Name, SourcePath: source})
	}
	return bundle, nil
}

// toSubmesh はサブメッシュダンプを変換する。
func toSubmesh(record submeshDump) (model.Submesh, error) {
	submesh := model.Submesh{
		Name:        record.Name,
		TextureName: record.TextureName,
		Vertices:    make([]model.Vertex, len(record.Vertices)),
		Indices:     append([]int(nil), record.Indices...),
	}
	for vi, vertexRecord := range record.Vertices {
		position, err := toVec3(vertexRecord.Position, "position", vi)
		if err != nil {
			return model.Submesh{}, err
		}
		normal := mmath.ZERO_VEC3
		if len(vertexRecord.Normal) > 0 {
			if normal, err = toVec3(vertexRecord.Normal, "normal", vi); err != nil {
				return model.Submesh{}, err
			}
		}
		uv := mmath.Vec2{}
		if len(vertexRecord.UV) > 0 {
			if len(vertexRecord.UV) != 2 {
				return model.Submesh{}, merr.NewUnsupportedFormat("uvの要素数が不正です: vertex=%d len=%d", nil, vi, len(vertexRecord.UV))
			}
			uv = mmath.Vec2{X: vertexRecord.UV[0], Y: vertexRecord.UV[1]}
		}
		influences := make([]model.Influence, 0, len(vertexRecord.Influences))
		for _, influence := range vertexRecord.Influences {
			influences = append(influences, model.Influence{BoneIndex: influence.BoneIndex, Weight: influence.Weight})
		}
		submesh.Vertices[vi] = model.Vertex{Position: position, Normal: normal, UV: uv, Influences: influences}
	}
	return submesh, nil
}

// toMotionAsset はモーションダンプを変換する。
func toMotionAsset(record motionDump) (*motion.MotionAsset, error) {
	asset := &motion.MotionAsset{
		Name:            record.Name,
		FrameRate:       record.FrameRate,
		BoneTracks:      make([]motion.BoneTrack, 0, len(record.BoneTracks)),
		CameraKeyframes: make([]motion.CameraKeyframe, 0, len(record.CameraKeyframes)),
	}
	for _, trackRecord := range record.BoneTracks {
		track := motion.BoneTrack{Path: trackRecord.Path, Keyframes: make([]motion.BoneKeyframe, 0, len(trackRecord.Keyframes))}
		for ki, keyframeRecord := range trackRecord.Keyframes {
			keyframe := motion.BoneKeyframe{
				Time:     keyframeRecord.Time,
				Rotation: mmath.NewQuaternion(),
				Curve:    toCurve(keyframeRecord.Curve),
			}
			if keyframeRecord.Position != nil {
				position, err := toVec3(keyframeRecord.Position, "position", ki)
				if err != nil {
					return nil, err
				}
				keyframe.Position = position
				keyframe.HasPosition = true
			}
			if keyframeRecord.Rotation != nil {
				rotation, err := toQuaternion(keyframeRecord.Rotation, "rotation", ki)
				if err != nil {
					return nil, err
				}
				keyframe.Rotation = rotation
				keyframe.HasRotation = true
			}
			track.Keyframes = append(track.Keyframes, keyframe)
		}
		asset.BoneTracks = append(asset.BoneTracks, track)
	}
	for ki, keyframeRecord := range record.CameraKeyframes {
		target, err := toVec3(keyframeRecord.Target, "target", ki)
		if err != nil {
			return nil, err
		}
		eye, err := toVec3(keyframeRecord.Eye, "eye", ki)
		if err != nil {
			return nil, err
		}
		asset.CameraKeyframes = append(asset.CameraKeyframes, motion.CameraKeyframe{
			Time:        keyframeRecord.Time,
			Target:      target,
			Eye:         eye,
			FieldOfView: keyframeRecord.FieldOfView,
			Roll:        keyframeRecord.Roll,
			Curve:       toCurve(keyframeRecord.Curve),
		})
	}
	return asset, nil
}

func toCurve(record *curveDump) *motion.Curve {
	if record == nil {
		return nil
	}
	return &motion.Curve{X1: record.X1, Y1: record.Y1, X2: record.X2, Y2: record.Y2}
}

// toVec3 は3要素配列をVec3へ変換する。
func toVec3(values []float64, field string, index int) (mmath.Vec3, error) {
	if len(values) != 3 {
		return mmath.ZERO_VEC3, merr.NewUnsupportedFormat("%sの要素数が不正です: index=%d len=%d", nil, field, index, len(values))
	}
	return mmath.NewVec3BySlice(values), nil
}

// toQuaternion は [x,y,z,w] 配列をクォータニオンへ変換する。
func toQuaternion(values []float64, field string, index int) (mmath.Quaternion, error) {
	if len(values) != 4 {
		return mmath.NewQuaternion(), merr.NewUnsupportedFormat("%sの要素数が不正です: index=%d len=%d", nil, field, index, len(values))
	}
	return mmath.NewQuaternionBySlice(values), nil
}
