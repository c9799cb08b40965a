// Package s3 предоставляет доступ к S3 совместимому хранилищу: загрузку, чтение и удаление аудиофайлов
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/cockroachdb/errors"

	"github.com/hazadus/go-vibes/internal/streaming"
)

// Config содержит настройки для S3
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// Uploader обертка над клиентом S3
type Uploader struct {
	s3Uploader s3manageriface.UploaderAPI
	s3Client   s3iface.S3API
	config     *Config
}

var _ streaming.ObjectStore = (*Uploader)(nil)

// NewUploader создает новый S3 клиент
func NewUploader(config *Config) (*Uploader, error) {
	if config.BucketName == "" {
		return nil, errors.New("не указан бакет S3")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Для S3 совместимых хранилищ используется path-style адресация
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания AWS сессии")
	}

	return newUploader(config, s3manager.NewUploader(sess), s3.New(sess)), nil
}

func newUploader(config *Config, uploader s3manageriface.UploaderAPI, client s3iface.S3API) *Uploader {
	return &Uploader{
		s3Uploader: uploader,
		s3Client:   client,
		config:     config,
	}
}

// Bucket возвращает имя бакета по умолчанию
func (u *Uploader) Bucket() string {
	return u.config.BucketName
}

// UploadFile загружает файл в S3 и возвращает его публичный адрес
func (u *Uploader) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := u.s3Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.config.BucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", errors.Wrap(err, "ошибка загрузки")
	}

	return u.ObjectURL(key), nil
}

// Open открывает объект для потокового чтения. Пустое имя бакета означает бакет из настроек
func (u *Uploader) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		bucket = u.config.BucketName
	}

	out, err := u.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка чтения s3://%s/%s", bucket, key)
	}

	return out.Body, nil
}

// DeleteFile удаляет файл из S3
func (u *Uploader) DeleteFile(ctx context.Context, key string) error {
	_, err := u.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "ошибка удаления файла из S3")
	}

	return nil
}

// ObjectURL формирует публичный адрес объекта
func (u *Uploader) ObjectURL(key string) string {
	if u.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(u.config.Endpoint, "/"), u.config.BucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.config.BucketName, u.config.Region, key)
}

// KeyFromURL извлекает ключ объекта из адреса, построенного ObjectURL, или из локатора s3://
func (u *Uploader) KeyFromURL(fileURL string) (string, error) {
	if strings.HasPrefix(fileURL, "s3://") {
		bucket, key, err := streaming.ParseS3Locator(fileURL)
		if err != nil {
			return "", err
		}
		if bucket != u.config.BucketName {
			return "", errors.Newf("объект из другого бакета: %s", bucket)
		}
		return key, nil
	}

	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return "", errors.Wrap(err, "неверный URL")
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	if u.config.Endpoint == "" && strings.HasPrefix(parsedURL.Host, u.config.BucketName+".") {
		// virtual-hosted адрес: бакет в имени хоста
		if path == "" {
			return "", errors.New("неверный формат URL S3")
		}
		return path, nil
	}

	// path-style адрес: endpoint/bucket/key
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] != u.config.BucketName || parts[1] == "" {
		return "", errors.New("неверный формат URL S3")
	}
	return parts[1], nil
}
