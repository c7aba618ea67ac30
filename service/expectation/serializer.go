/*
 * @module service/expectation/serializer
 * @description 期望套件序列化层，支持 JSON 与 YAML 两种互换编码及文件读写
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 套件编码 -> 文本输出/文件写入；文件读取 -> 编码探测 -> 解码校验
 * @rules 缺省字段不输出占位符，列表顺序保持，解码复用构建时字段校验，往返无损
 * @dependencies encoding/json, gopkg.in/yaml.v3, golang.org/x/text
 * @refs service/models/expectation_suite.go
 */

package expectation

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"datacontract-service/service/models"
)

// SerializeJSON 将套件序列化为 JSON 文本
// 输出前先做字段校验并落地缺省参数，保证序列化再解码得到等价套件
func SerializeJSON(suite *models.ExpectationSuite) (string, error) {
	if suite == nil {
		return "", newConversionError("套件 JSON 序列化失败", fmt.Errorf("套件不能为空"))
	}
	if err := suite.Validate(); err != nil {
		return "", newConversionError("套件 JSON 序列化失败", err)
	}
	data, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return "", newConversionError("套件 JSON 序列化失败", err)
	}
	return string(data), nil
}

// DeserializeJSON 从 JSON 文本还原套件，字段校验复用构建逻辑
func DeserializeJSON(text string) (*models.ExpectationSuite, error) {
	var suite models.ExpectationSuite
	if err := json.Unmarshal([]byte(text), &suite); err != nil {
		return nil, newConversionError("套件 JSON 反序列化失败", err)
	}
	if err := suite.Validate(); err != nil {
		return nil, newConversionError("套件 JSON 反序列化失败", err)
	}
	return &suite, nil
}

// SerializeYAML 将套件序列化为 YAML 文本
func SerializeYAML(suite *models.ExpectationSuite) (string, error) {
	if suite == nil {
		return "", newConversionError("套件 YAML 序列化失败", fmt.Errorf("套件不能为空"))
	}
	if err := suite.Validate(); err != nil {
		return "", newConversionError("套件 YAML 序列化失败", err)
	}
	data, err := yaml.Marshal(suite)
	if err != nil {
		return "", newConversionError("套件 YAML 序列化失败", err)
	}
	return string(data), nil
}

// DeserializeYAML 从 YAML 文本还原套件
func DeserializeYAML(text string) (*models.ExpectationSuite, error) {
	var suite models.ExpectationSuite
	if err := yaml.Unmarshal([]byte(text), &suite); err != nil {
		return nil, newConversionError("套件 YAML 反序列化失败", err)
	}
	if err := suite.Validate(); err != nil {
		return nil, newConversionError("套件 YAML 反序列化失败", err)
	}
	return &suite, nil
}

// Serialize 按编码名序列化，format 取 json 或 yaml
func Serialize(suite *models.ExpectationSuite, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return SerializeJSON(suite)
	case "yaml", "yml":
		return SerializeYAML(suite)
	default:
		return "", newConversionError("套件序列化失败", fmt.Errorf("不支持的编码格式: %s", format))
	}
}

// Deserialize 按编码名反序列化
func Deserialize(text, format string) (*models.ExpectationSuite, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return DeserializeJSON(text)
	case "yaml", "yml":
		return DeserializeYAML(text)
	default:
		return nil, newConversionError("套件反序列化失败", fmt.Errorf("不支持的编码格式: %s", format))
	}
}

// SerializeToFile 序列化并写入文件，父目录不存在时自动创建
func SerializeToFile(suite *models.ExpectationSuite, path, format string) error {
	text, err := Serialize(suite, format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newConversionError("套件文件写入失败", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return newConversionError("套件文件写入失败", err)
	}
	defer file.Close()

	if _, err := file.WriteString(text); err != nil {
		return newConversionError("套件文件写入失败", err)
	}

	slog.Info("套件已写入文件", "path", path, "format", format)
	return nil
}

// DeserializeFromFile 读取并反序列化套件文件
// format 为空时依据扩展名推断，内容本身通过 expectation_type 自描述
func DeserializeFromFile(path, format string) (*models.ExpectationSuite, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	text, err := readSuiteFile(path)
	if err != nil {
		return nil, err
	}

	suite, err := Deserialize(text, format)
	if err != nil {
		return nil, err
	}

	slog.Info("套件已从文件加载", "path", path, "format", format, "total_expectations", len(suite.Expectations))
	return suite, nil
}

// readSuiteFile 读取套件文件，非 UTF-8 内容按 GBK 回退解码
// 旧版 Windows 工具导出的套件文件仍可能是 GBK 编码
func readSuiteFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", newConversionError("套件文件读取失败", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", newConversionError("套件文件读取失败", err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return "", newConversionError("套件文件编码转换失败", err)
	}
	slog.Warn("套件文件不是 UTF-8 编码，已按 GBK 转换", "path", path)
	return string(decoded), nil
}
