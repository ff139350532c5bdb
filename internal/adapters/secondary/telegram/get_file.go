package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const maxFileSize = 20 * 1024 * 1024 // лимит Bot API на скачивание

// getFileResponse ответ метода getFile
type getFileResponse struct {
	APIResponse
	Result struct {
		FileID   string `json:"file_id"`
		FileSize int64  `json:"file_size"`
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// getFileRequest запрос метода getFile
type getFileRequest struct {
	FileID string `json:"file_id"`
}

// DownloadFile скачивает файл из Telegram по file_id (фото для image-to-video)
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var resp getFileResponse
	if err := c.postJSON(ctx, "getFile", getFileRequest{FileID: fileID}, &resp); err != nil {
		return nil, err
	}

	if resp.Result.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile returned empty file_path [file_id=%s]", fileID)
	}
	if resp.Result.FileSize > maxFileSize {
		return nil, fmt.Errorf("file too large [file_id=%s, size=%d]", fileID, resp.Result.FileSize)
	}

	url := c.fileURL + "/" + resp.Result.FilePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to download file [file_id=%s]: %w", fileID, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download failed [file_id=%s, status=%d]", fileID, httpResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body [file_id=%s]: %w", fileID, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("file too large [file_id=%s]", fileID)
	}

	c.log.Debug("file downloaded from telegram",
		"file_id", fileID,
		"size", len(data),
	)
	return data, nil
}
