package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // デコーダー登録
	"image/jpeg"
	_ "image/png" // デコーダー登録
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp" // デコーダー登録
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // デコーダー登録
	_ "golang.org/x/image/webp" // デコーダー登録

	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
)

const (
	// DefaultMaxDimension は送信画像の長辺の上限（ピクセル）です。
	DefaultMaxDimension = 1024
	// DefaultJPEGQuality は再エンコード時のJPEG品質です。
	DefaultJPEGQuality = 85
	// DefaultMaxUploadBytes はアップロード1枚あたりの最大サイズ（10MB）です。
	DefaultMaxUploadBytes = 10 * 1024 * 1024
	// DefaultMaxPixels はデコードを許可する画素数（幅×高さ）の上限です。
	// デコード後のRGBAキャンバスは1画素4バイトなので、約200MBに相当します。
	DefaultMaxPixels = 50_000_000
)

// NormalizeOptions は正規化のパラメータです。0以下の値は既定値に置き換えられます。
type NormalizeOptions struct {
	MaxDimension   int
	Quality        int
	MaxUploadBytes int
	MaxPixels      int
}

// Normalizer はアップロード画像を白背景・長辺上限・固定品質のJPEGに変換します。
type Normalizer struct {
	opts NormalizeOptions
}

// NewNormalizer はNormalizerの新しいインスタンスを生成します。
func NewNormalizer(opts NormalizeOptions) *Normalizer {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultJPEGQuality
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	return &Normalizer{opts: opts}
}

// Normalize は1枚の画像をデコードし、透過を白で平坦化し、必要なら縮小してJPEGに再エンコードします。
// 失敗した場合はファイル名を持つ*domain.NormalizationErrorを返します。
func (n *Normalizer) Normalize(img entity.UploadedImage) (entity.NormalizedImage, error) {
	if len(img.Data) > n.opts.MaxUploadBytes {
		return entity.NormalizedImage{}, &domain.NormalizationError{Filename: img.Filename, Stage: "read", Err: &domain.LimitError{
			Err: domain.ErrImageTooLarge, Limit: int64(n.opts.MaxUploadBytes), Actual: int64(len(img.Data)),
		}}
	}
	if len(img.Data) == 0 {
		return entity.NormalizedImage{}, &domain.NormalizationError{
			Filename: img.Filename, Stage: "decode", Err: fmt.Errorf("%w: empty file", domain.ErrDecode),
		}
	}

	// ヘッダーだけ読んで画素数を確認し、圧縮率の高い巨大画像を展開前に拒否する
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return entity.NormalizedImage{}, &domain.NormalizationError{
			Filename: img.Filename, Stage: "decode", Err: fmt.Errorf("%w: %v", domain.ErrDecode, err),
		}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(n.opts.MaxPixels) {
		return entity.NormalizedImage{}, &domain.NormalizationError{Filename: img.Filename, Stage: "decode", Err: &domain.LimitError{
			Err: domain.ErrTooManyPixels, Limit: int64(n.opts.MaxPixels), Actual: pixels,
		}}
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return entity.NormalizedImage{}, &domain.NormalizationError{
			Filename: img.Filename, Stage: "decode", Err: fmt.Errorf("%w: %v", domain.ErrDecode, err),
		}
	}

	out := flatten(src)
	if o := exifOrientation(img.Data); o != 1 {
		out = orient(out, o)
	}
	out = downscale(out, n.opts.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: n.opts.Quality}); err != nil {
		return entity.NormalizedImage{}, &domain.NormalizationError{
			Filename: img.Filename, Stage: "encode", Err: fmt.Errorf("%w: %v", domain.ErrEncode, err),
		}
	}

	b := out.Bounds()
	return entity.NormalizedImage{
		Filename:    jpegFilename(img.Filename),
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// flatten は画像を同じサイズの白いキャンバスに合成します。
// 不透明な画像では見た目が変わらず、透過・パレット画像は白背景のRGBになります。
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Over)
	return canvas
}

// downscale は長辺がmaxDimを超える場合のみ、アスペクト比を保ってCatmull-Romで縮小します。
func downscale(src *image.RGBA, maxDim int) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	nw, nh := scaledSize(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// scaledSize は長辺をmaxDimに合わせたときの幅と高さを返します。短辺は四捨五入し、最小1です。
func scaledSize(w, h, maxDim int) (int, int) {
	if w >= h {
		nh := (h*maxDim + w/2) / w
		return maxDim, max(nh, 1)
	}
	nw := (w*maxDim + h/2) / h
	return max(nw, 1), maxDim
}

// exifOrientation はEXIFのOrientationタグを返します。読み取れない場合は1です。
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient はEXIFのOrientation（2〜8）に従って画像を正立させます。
func orient(src *image.RGBA, orientation int) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // 左右反転
				dx, dy = w-1-x, y
			case 3: // 180度回転
				dx, dy = w-1-x, h-1-y
			case 4: // 上下反転
				dx, dy = x, h-1-y
			case 5: // 転置
				dx, dy = y, x
			case 6: // 時計回りに90度
				dx, dy = h-1-y, x
			case 7: // 反転転置
				dx, dy = h-1-y, w-1-x
			case 8: // 反時計回りに90度
				dx, dy = y, w-1-x
			default:
				return src
			}
			si := src.PixOffset(x, y)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// jpegFilename は拡張子を.jpgに置き換えたファイル名を返します。
func jpegFilename(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "image.jpg"
	}
	return stem + ".jpg"
}
