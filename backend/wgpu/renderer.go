// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/jfa"
	"github.com/gogpu/jfa/flood"
	"github.com/gogpu/jfa/mask"
	"github.com/gogpu/jfa/resources"
)

// defaultMaskThreshold matches the CPU path: resolved coverage at or
// above 128/255 seeds the flood field.
const defaultMaskThreshold = 128

// gpuFrameTimeout bounds the fence wait after submission.
const gpuFrameTimeout = 5 * time.Second

// Renderer draws screen-space mesh outlines on the GPU. Each camera
// frame records four passes into one command encoder: the MSAA mask
// rasterization with resolve, the seed init, the jump flood ping-pong
// chain, and the outline composite onto the camera target. One submit
// and one fence wait per camera.
//
// Per-camera textures persist across frames and are recreated only on
// resolution change; pipelines are memoized per target format.
type Renderer struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	pipelines pipelineSet
	textures  map[uint64]*textureSet

	halfRes   bool
	threshold uint8
}

// New creates a renderer on the given HAL device and queue. GPU
// resources are not allocated until the first frame.
func New(device hal.Device, queue hal.Queue) *Renderer {
	return &Renderer{
		device:    device,
		queue:     queue,
		textures:  make(map[uint64]*textureSet),
		threshold: defaultMaskThreshold,
	}
}

// SetHalfResolution switches the mask and flood passes between full
// and half camera resolution. Takes effect on the next frame; the
// composite pass rescales distances so outline widths stay in
// full-resolution pixels.
func (r *Renderer) SetHalfResolution(enabled bool) {
	r.mu.Lock()
	r.halfRes = enabled
	r.mu.Unlock()
}

// HalfResolution reports whether half-resolution mode is on.
func (r *Renderer) HalfResolution() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.halfRes
}

// RenderFrame renders outlines for every camera in the provider's
// scene snapshot.
func (r *Renderer) RenderFrame(provider jfa.SceneProvider) error {
	if provider == nil {
		return jfa.ErrNilProvider
	}
	scene := provider.Snapshot()
	if scene == nil {
		return jfa.ErrNilSnapshot
	}
	for i := range scene.Cameras {
		cam := &scene.Cameras[i]
		if err := r.RenderCamera(scene, cam); err != nil {
			return fmt.Errorf("camera %d: %w", cam.ID, err)
		}
	}
	return nil
}

// RenderCamera renders the outline for one camera, compositing over
// the camera's target image and reading the result back. Cameras with
// outlining disabled, no style, no usable target, or no eligible
// meshes are skipped.
func (r *Renderer) RenderCamera(scene *jfa.Scene, cam *jfa.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := jfa.Logger()
	if !cam.Outline.Enabled || cam.Outline.Style == nil {
		log.Debug("outline disabled", "camera", cam.ID)
		return nil
	}
	if cam.Target == nil || cam.Width <= 0 || cam.Height <= 0 {
		log.Debug("no usable target", "camera", cam.ID)
		return nil
	}
	style := cam.Outline.Style
	if err := style.Validate(); err != nil {
		return err
	}
	if style.Weight == 0 {
		return nil
	}

	var queue mask.Queue
	for i := range scene.Meshes {
		m := &scene.Meshes[i]
		if m.Outline && m.Mesh != nil {
			queue.Add(m.Mesh, m.Transform, cam.View)
		}
	}
	if queue.Len() == 0 {
		log.Debug("no eligible meshes", "camera", cam.ID)
		return nil
	}
	queue.Sort()

	if err := r.pipelines.init(r.device); err != nil {
		return err
	}

	passW, passH := resources.PassResolution(cam.Width, cam.Height, r.halfRes)
	ts := r.textures[cam.ID]
	if ts == nil {
		ts = &textureSet{}
		r.textures[cam.ID] = ts
	}
	recreate := ts.width != uint32(passW) || ts.height != uint32(passH)
	if err := ts.ensure(r.device, uint32(passW), uint32(passH)); err != nil {
		return err
	}
	if recreate {
		log.Info("outline textures created", "camera", cam.ID, "width", passW, "height", passH)
	}

	scale := float32(1)
	if r.halfRes {
		scale = 2
	}
	return r.encodeFrame(cam, &queue, ts, style, scale)
}

// Destroy releases all GPU resources held by the renderer. Safe to
// call multiple times.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.textures {
		ts.destroy(r.device)
		delete(r.textures, id)
	}
	r.pipelines.destroy()
}

// frameBuffers holds the per-frame GPU objects of one camera frame.
type frameBuffers struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

func (f *frameBuffers) destroy(device hal.Device) {
	for _, bg := range f.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range f.buffers {
		device.DestroyBuffer(b)
	}
}

// uploadBuffer creates a GPU buffer, uploads data, and tracks it for
// end-of-frame destruction.
func (r *Renderer) uploadBuffer(fb *frameBuffers, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	fb.buffers = append(fb.buffers, buf)
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// sampledBindGroup builds a bind group pairing one uniform buffer with
// one sampled texture view, the layout shared by the init, jump, and
// outline passes.
func (r *Renderer) sampledBindGroup(fb *frameBuffers, label string, uniform hal.Buffer, size uint64, view hal.TextureView) (hal.BindGroup, error) {
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: r.pipelines.sampledLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniform.NativeHandle(), Offset: 0, Size: size}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	fb.bindGroups = append(fb.bindGroups, bg)
	return bg, nil
}

// meshDraw is one mask-pass draw with its uploaded geometry and
// transform bind group.
type meshDraw struct {
	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	bindGroup  hal.BindGroup
	indexCount uint32
}

// encodeFrame records the four passes, submits, waits on the fence,
// and reads the composited target back into cam.Target.
func (r *Renderer) encodeFrame(cam *jfa.Camera, queue *mask.Queue, ts *textureSet, style *jfa.Style, scale float32) error {
	fb := &frameBuffers{}
	defer fb.destroy(r.device)

	camW, camH := uint32(cam.Width), uint32(cam.Height) //nolint:gosec // dimensions checked positive

	// Camera target texture, seeded with the current target contents
	// so the composite pass blends over them.
	targetTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "outline_target",
		Size:          hal.Extent3D{Width: camW, Height: camH, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	defer r.device.DestroyTexture(targetTex)

	targetView, err := r.device.CreateTextureView(targetTex, &hal.TextureViewDescriptor{
		Label: "outline_target_view",
	})
	if err != nil {
		return fmt.Errorf("create target view: %w", err)
	}
	defer r.device.DestroyTextureView(targetView)

	r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: targetTex, MipLevel: 0},
		cam.Target.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: camW * 4, RowsPerImage: camH},
		&hal.Extent3D{Width: camW, Height: camH, DepthOrArrayLayers: 1},
	)

	// Mask pass geometry and per-draw transforms.
	viewProj := cam.Proj.Mul4(cam.View)
	draws := queue.Draws()
	meshDraws := make([]meshDraw, 0, len(draws))
	for i := range draws {
		d := &draws[i]
		md, err := r.buildMeshDraw(fb, d, viewProj)
		if err != nil {
			return err
		}
		meshDraws = append(meshDraws, md)
	}

	// Fullscreen pass uniforms and bind groups.
	initUniform, err := r.uploadBuffer(fb, "outline_init_uniform",
		makeInitUniform(ts.width, ts.height, r.threshold), gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	initBind, err := r.sampledBindGroup(fb, "outline_init_bind", initUniform, initUniformSize, ts.maskView)
	if err != nil {
		return err
	}

	steps := flood.StepSchedule(int(ts.width), int(ts.height))
	jumpBinds := make([]hal.BindGroup, len(steps))
	src := 0
	for i, step := range steps {
		uniform, err := r.uploadBuffer(fb, fmt.Sprintf("outline_jump_uniform_%d", i),
			makeJumpUniform(ts.width, ts.height, int32(step)), gputypes.BufferUsageUniform) //nolint:gosec // step fits int32
		if err != nil {
			return err
		}
		bind, err := r.sampledBindGroup(fb, fmt.Sprintf("outline_jump_bind_%d", i),
			uniform, jumpUniformSize, ts.fieldView[src])
		if err != nil {
			return err
		}
		jumpBinds[i] = bind
		src = 1 - src
	}
	// src now indexes the buffer the final jump pass wrote.
	final := src

	outlineUniform, err := r.uploadBuffer(fb, "outline_style_uniform",
		makeOutlineUniform(style, scale), gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	outlineBind, err := r.sampledBindGroup(fb, "outline_style_bind",
		outlineUniform, outlineUniformSize, ts.fieldView[final])
	if err != nil {
		return err
	}

	maskPipe, err := r.pipelines.maskPipeline()
	if err != nil {
		return err
	}
	initPipe, err := r.pipelines.initPipeline()
	if err != nil {
		return err
	}
	jumpPipe, err := r.pipelines.jumpPipeline()
	if err != nil {
		return err
	}
	outlinePipe, err := r.pipelines.outlinePipeline(gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "outline_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("outline_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// Pass 1: MSAA mask rasterization with resolve.
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "outline_mask_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          ts.maskMSAAView,
			ResolveTarget: ts.maskView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(maskPipe)
	for _, md := range meshDraws {
		rp.SetBindGroup(0, md.bindGroup, nil)
		rp.SetVertexBuffer(0, md.vertBuf, 0)
		rp.SetIndexBuffer(md.idxBuf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(md.indexCount, 1, 0, 0, 0)
	}
	rp.End()

	// Pass 2: seed init into field buffer 0. The clear value is the
	// sentinel, so texels the fragment shader never reaches stay
	// unseeded.
	rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "outline_init_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       ts.fieldView[0],
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: -1, G: -1, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(initPipe)
	rp.SetBindGroup(0, initBind, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	// Pass 3: jump flood chain, ping-ponging between the two field
	// buffers. Each pass reads the other buffer through its bind
	// group.
	dst := 1
	for i := range steps {
		rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "outline_jump_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       ts.fieldView[dst],
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: -1, G: -1, B: 0, A: 0},
			}},
		})
		rp.SetPipeline(jumpPipe)
		rp.SetBindGroup(0, jumpBinds[i], nil)
		rp.Draw(3, 1, 0, 0)
		rp.End()
		dst = 1 - dst
	}

	// Pass 4: composite the outline over the existing target contents.
	rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "outline_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    targetView,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(outlinePipe)
	rp.SetBindGroup(0, outlineBind, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	// Transition for readback, then copy to a 256-byte row aligned
	// staging buffer.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	bytesPerRow := camW * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(camH)

	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "outline_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: camH},
		TextureBase:  hal.ImageCopyTexture{Texture: targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: camW, Height: camH, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, gpuFrameTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// Strip per-row padding into the target image.
	for row := uint32(0); row < camH; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * cam.Target.Stride
		copy(cam.Target.Pix[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
	}
	return nil
}

// buildMeshDraw uploads one mesh's geometry and transform uniform and
// creates its mask pass bind group.
func (r *Renderer) buildMeshDraw(fb *frameBuffers, d *mask.Draw, viewProj mgl32.Mat4) (meshDraw, error) {
	vertBuf, err := r.uploadBuffer(fb, "outline_mesh_verts",
		meshVertexBytes(d.Mesh.Positions), gputypes.BufferUsageVertex)
	if err != nil {
		return meshDraw{}, err
	}
	idxBuf, err := r.uploadBuffer(fb, "outline_mesh_indices",
		meshIndexBytes(d.Mesh.Indices), gputypes.BufferUsageIndex)
	if err != nil {
		return meshDraw{}, err
	}

	mvp := viewProj.Mul4(d.Model)
	uniformBuf, err := r.uploadBuffer(fb, "outline_mesh_uniform",
		makeMaskUniform(mvp), gputypes.BufferUsageUniform)
	if err != nil {
		return meshDraw{}, err
	}

	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "outline_mesh_bind",
		Layout: r.pipelines.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: maskUniformSize,
			}},
		},
	})
	if err != nil {
		return meshDraw{}, fmt.Errorf("create mesh bind group: %w", err)
	}
	fb.bindGroups = append(fb.bindGroups, bg)

	return meshDraw{
		vertBuf:    vertBuf,
		idxBuf:     idxBuf,
		bindGroup:  bg,
		indexCount: uint32(len(d.Mesh.Indices)), //nolint:gosec // index count fits uint32
	}, nil
}

// ---- Uniform and geometry serialization ----

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// makeMaskUniform serializes the 64-byte model-view-projection matrix.
// mgl32 matrices are column-major, matching WGSL mat4x4 storage.
func makeMaskUniform(mvp mgl32.Mat4) []byte {
	buf := make([]byte, maskUniformSize)
	for i, v := range mvp {
		putFloat32(buf[i*4:], v)
	}
	return buf
}

// makeInitUniform serializes the seed init parameters: the reciprocal
// field size and the coverage threshold mapped to [0, 1].
func makeInitUniform(w, h uint32, threshold uint8) []byte {
	buf := make([]byte, initUniformSize)
	putFloat32(buf[0:], 1/float32(w))
	putFloat32(buf[4:], 1/float32(h))
	putFloat32(buf[8:], float32(threshold)/255)
	return buf
}

// makeJumpUniform serializes the jump pass parameters: field size and
// the step offset in texels.
func makeJumpUniform(w, h uint32, step int32) []byte {
	buf := make([]byte, jumpUniformSize)
	putFloat32(buf[0:], float32(w))
	putFloat32(buf[4:], float32(h))
	binary.LittleEndian.PutUint32(buf[8:], uint32(step))
	return buf
}

// makeOutlineUniform serializes the composite parameters: outline
// color, weight in full-resolution pixels, and the field-to-target
// distance scale.
func makeOutlineUniform(style *jfa.Style, scale float32) []byte {
	buf := make([]byte, outlineUniformSize)
	c := style.Color.Vec4()
	for i, v := range c {
		putFloat32(buf[i*4:], float32(v))
	}
	putFloat32(buf[16:], float32(style.Weight))
	putFloat32(buf[20:], scale)
	return buf
}

// meshVertexBytes serializes mesh positions as tightly packed
// vec3<f32> vertices.
func meshVertexBytes(positions []mgl32.Vec3) []byte {
	buf := make([]byte, len(positions)*meshVertexStride)
	off := 0
	for _, p := range positions {
		putFloat32(buf[off:], p.X())
		putFloat32(buf[off+4:], p.Y())
		putFloat32(buf[off+8:], p.Z())
		off += meshVertexStride
	}
	return buf
}

// meshIndexBytes serializes triangle indices as uint32 little-endian.
func meshIndexBytes(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
