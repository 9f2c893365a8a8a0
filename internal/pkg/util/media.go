package util

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType 按文件头识别真实类型，识别后把读取位置复位到开头
func DetectContentType(reader io.ReadSeeker) (mime string, ext string, err error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	return mtype.String(), mtype.Extension(), nil
}
