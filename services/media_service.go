package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	fig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/techagentng/incidentx/config"
)

// MediaService stores uploaded files in S3 and produces derivative images:
// a feed-sized copy and a thumbnail for incident photos, a small square for
// profile pictures.
type MediaService interface {
	ProcessIncidentImage(fileHeader *multipart.FileHeader, userID uint) (imageURL, thumbnailURL string, err error)
	UploadDocument(fileHeader *multipart.FileHeader, userID uint, kind string) (string, error)
	ProcessProfilePicture(fileHeader *multipart.FileHeader, userID uint) (string, error)
}

type mediaService struct {
	Config *config.Config
}

func NewMediaService(conf *config.Config) MediaService {
	return &mediaService{Config: conf}
}

const MaxUploadFileSize = 10 * 1024 * 1024 // 10 MB

func CheckFileSize(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxUploadFileSize {
		return errors.New("file size exceeds the maximum allowed size")
	}
	return nil
}

func CheckSupportedFile(filename string) (bool, string) {
	supportedFileTypes := map[string]bool{
		".png":  true,
		".jpeg": true,
		".jpg":  true,
		".pdf":  true,
	}

	fileExtension := filepath.Ext(filename)
	return supportedFileTypes[fileExtension], fileExtension
}

func generateUniqueFilename(extension string) string {
	timestamp := time.Now().UnixNano()
	randomUUID := uuid.New()
	return fmt.Sprintf("%d_%s%s", timestamp, randomUUID, extension)
}

// ProcessIncidentImage decodes the upload, renders a 1080 feed copy and a
// 161x161 thumbnail, and uploads both to S3.
func (m *mediaService) ProcessIncidentImage(fileHeader *multipart.FileHeader, userID uint) (string, string, error) {
	if err := CheckFileSize(fileHeader); err != nil {
		return "", "", err
	}
	supported, ext := CheckSupportedFile(fileHeader.Filename)
	if !supported || ext == ".pdf" {
		return "", "", fmt.Errorf("unsupported image type: %s", fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %v", err)
	}

	feedImg := imaging.Fill(img, 1080, 1080, imaging.Center, imaging.Lanczos)
	thumbnailImg := imaging.Resize(img, 161, 161, imaging.Lanczos)

	feedKey := fmt.Sprintf("media/incidents/%d_%s", userID, generateUniqueFilename(".jpg"))
	thumbnailKey := fmt.Sprintf("media/thumbnails/%d_%s", userID, generateUniqueFilename(".jpg"))

	imageURL, err := m.uploadJPEG(feedImg, feedKey)
	if err != nil {
		return "", "", err
	}
	thumbnailURL, err := m.uploadJPEG(thumbnailImg, thumbnailKey)
	if err != nil {
		return "", "", err
	}
	return imageURL, thumbnailURL, nil
}

// UploadDocument streams an identity document to S3 unchanged.
func (m *mediaService) UploadDocument(fileHeader *multipart.FileHeader, userID uint, kind string) (string, error) {
	if err := CheckFileSize(fileHeader); err != nil {
		return "", err
	}
	supported, ext := CheckSupportedFile(fileHeader.Filename)
	if !supported {
		return "", fmt.Errorf("unsupported file type: %s", fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	fileKey := fmt.Sprintf("media/documents/%d_%s_%s%s", userID, kind, uuid.New().String(), ext)
	return m.putObject(file, fileKey, fileHeader.Header.Get("Content-Type"))
}

// ProcessProfilePicture renders a 200px-wide copy and uploads it.
func (m *mediaService) ProcessProfilePicture(fileHeader *multipart.FileHeader, userID uint) (string, error) {
	if err := CheckFileSize(fileHeader); err != nil {
		return "", err
	}
	supported, ext := CheckSupportedFile(fileHeader.Filename)
	if !supported || ext == ".pdf" {
		return "", fmt.Errorf("unsupported image type: %s", fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}
	thumbnail := resize.Resize(200, 0, img, resize.Lanczos3)

	fileKey := fmt.Sprintf("media/profiles/%d_%s", userID, generateUniqueFilename(".jpg"))
	return m.uploadJPEG(thumbnail, fileKey)
}

func (m *mediaService) uploadJPEG(img image.Image, fileKey string) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return "", fmt.Errorf("failed to encode image: %v", err)
	}
	return m.putObject(bytes.NewReader(buf.Bytes()), fileKey, "image/jpeg")
}

func (m *mediaService) putObject(body io.Reader, fileKey, contentType string) (string, error) {
	bucketName := m.Config.AwsBucket
	if bucketName == "" {
		return "", fmt.Errorf("S3 bucket name is not configured")
	}

	cfg, err := fig.LoadDefaultConfig(context.TODO(),
		fig.WithRegion(m.Config.AwsRegion),
		fig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.Config.AwsAccessKeyID, m.Config.AwsSecretAccessKey, ""),
		),
	)
	if err != nil {
		return "", fmt.Errorf("unable to load AWS config: %v", err)
	}

	svc := s3.NewFromConfig(cfg)
	putObjectInput := &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(fileKey),
		Body:        body,
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	}
	if _, err = svc.PutObject(context.TODO(), putObjectInput); err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, m.Config.AwsRegion, fileKey), nil
}
