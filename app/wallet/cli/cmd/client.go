package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/cryptochain/business/web/errs"
)

var client = http.Client{
	Timeout: 30 * time.Second,
}

func get(url string, dataRecv any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	return do(req, dataRecv)
}

func post(url string, dataSend any, dataRecv any) error {
	data, err := json.Marshal(dataSend)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return do(req, dataRecv)
}

// do sends the request and decodes the node's answer. Failures come back as
// the node's error response so the reason code can be shown.
func do(req *http.Request, dataRecv any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var er errs.Response
		if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		}

		if er.Reason != "" {
			return fmt.Errorf("%s: %s", er.Reason, er.Error)
		}
		return fmt.Errorf("%s %v", er.Error, er.Fields)
	}

	if dataRecv == nil {
		return nil
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	return decoder.Decode(dataRecv)
}
