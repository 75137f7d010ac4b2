package templates

import (
	"embed"
	"html/template"
)

//go:embed *.tmpl
var files embed.FS

// Parse 는 내장된 콘솔 페이지 템플릿을 한 세트로 파싱한다.
// 페이지 템플릿 이름은 파일 이름(list.tmpl 등)이다.
func Parse() (*template.Template, error) {
	return template.New("console").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}).ParseFS(files, "*.tmpl")
}
