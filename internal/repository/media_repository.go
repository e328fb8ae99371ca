package repository

import (
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// MediaRepository stores image and document bytes in GridFS. Rows in
// Postgres reference blobs here by file id; deleting a listing deletes its
// blobs through this repository.
type MediaRepository struct {
	DB *mongo.Database
}

func NewMediaRepository(client *mongo.Client, dbName string) *MediaRepository {
	return &MediaRepository{DB: client.Database(dbName)}
}

func (r *MediaRepository) Upload(filename string, src io.Reader) (string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return "", fmt.Errorf("MediaRepository.Upload: %w", err)
	}

	stream, err := bucket.OpenUploadStream(filename)
	if err != nil {
		return "", fmt.Errorf("MediaRepository.Upload: open stream: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(stream, src); err != nil {
		return "", fmt.Errorf("MediaRepository.Upload: copy: %w", err)
	}
	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

func (r *MediaRepository) Download(fileID string) ([]byte, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, fmt.Errorf("MediaRepository.Download: %w", err)
	}

	objID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, fmt.Errorf("MediaRepository.Download: bad file id: %w", err)
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if err != nil {
		return nil, fmt.Errorf("MediaRepository.Download: open stream: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("MediaRepository.Download: read: %w", err)
	}
	return data, nil
}

func (r *MediaRepository) Delete(fileID string) error {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return fmt.Errorf("MediaRepository.Delete: %w", err)
	}
	objID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("MediaRepository.Delete: bad file id: %w", err)
	}
	if err := bucket.Delete(objID); err != nil {
		return fmt.Errorf("MediaRepository.Delete: %w", err)
	}
	return nil
}
