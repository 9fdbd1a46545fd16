package report

// Template text is embedded so the generated pages are self-contained and
// the binary ships without asset files.

const pageStyle = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 1100px; color: #1f2430; }
h1 { border-bottom: 2px solid #4a6cf7; padding-bottom: .4rem; }
h2 { margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #d8dce5; padding: .5rem .7rem; text-align: left; vertical-align: top; }
th { background: #f2f4fb; }
.meta { color: #667; font-size: .9rem; }
.badge { display: inline-block; background: #e7ebfd; color: #2740b0; border-radius: 4px; padding: .1rem .45rem; margin-right: .3rem; font-size: .8rem; }
.size { color: #889; font-size: .85rem; }
details { margin: .3rem 0; }
summary { cursor: pointer; }
.qbody { border-left: 3px solid #4a6cf7; padding-left: .8rem; margin: .5rem 0; }
.abody { border-left: 3px solid #2faf64; padding-left: .8rem; margin: .5rem 0; }
ul { list-style: none; padding-left: 1rem; }
li { margin: .2rem 0; }
a { color: #2740b0; text-decoration: none; }
a:hover { text-decoration: underline; }
`

const examTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Exam-style assignment - {{.Subject}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Exam-style questions: {{.Subject}}</h1>
<p class="meta">subject id {{.SID}} &middot; {{.Count}} questions &middot; generated {{.Generated}}</p>
<table>
<tr><th>#</th><th>Section</th><th>Question</th><th>Marks</th><th>Paper</th><th>Levels</th></tr>
{{range .Rows}}
<tr data-qid="{{.ID}}">
<td>{{.ID}}</td>
<td>{{.Number}}</td>
<td>
{{.Preview}}
<details><summary>full question</summary>
<div class="qbody">{{.Question}}</div>
<div class="abody">{{.Answer}}</div>
</details>
</td>
<td>{{.Marks}}</td>
<td>{{if .Paper}}<span class="badge">{{.Paper}}</span>{{end}}</td>
<td>{{range .Levels}}<span class="badge">{{.}}</span>{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

const assessmentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Question assignment - {{.Class}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Practice questions: {{.Class}}</h1>
<p class="meta">subject id {{.SID}}{{if .CID}} &middot; class id {{.CID}}{{end}} &middot; generated {{.Generated}}</p>
<table>
<tr><th>#</th><th>Topic</th><th>Difficulty</th><th>Question</th><th>Marks</th></tr>
{{range .Rows}}
<tr data-qid="{{.ID}}">
<td>{{.ID}}</td>
<td>{{.Node}}</td>
<td><span class="badge">{{.Difficulty}}</span></td>
<td>
{{.Preview}}
<details><summary>full question</summary>
<div class="qbody">{{.Question}}</div>
<div class="abody">{{.Answer}}</div>
</details>
</td>
<td>{{.Marks}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

const navigationTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Downloaded content</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Downloaded content</h1>
<p class="meta">{{.TotalFiles}} files ({{.MHTML}} mhtml, {{.HTML}} html) &middot; generated {{.Generated}}</p>
{{range .Classes}}
<h2>{{.Name}}{{if .SID}} <span class="badge">sid {{.SID}}</span>{{end}}{{if .CID}}<span class="badge">cid {{.CID}}</span>{{end}}</h2>
{{range .Tabs}}
<h3>{{.Name}}</h3>
{{if .Files}}<ul>
{{range .Files}}<li><a href="{{.Href}}">{{.Name}}</a> <span class="size">{{.Size}} {{.Type}}</span></li>
{{end}}</ul>{{end}}
{{range .Topics}}
<h4>{{.Name}}</h4>
<ul>
{{range .Files}}<li><a href="{{.Href}}">{{.Name}}</a> <span class="size">{{.Size}} {{.Type}}</span></li>
{{end}}</ul>
{{end}}
{{end}}
{{end}}
</body>
</html>
`

const sectionTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sections</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>Sections</h1>
<p class="meta">generated {{.Generated}}</p>
{{range .Classes}}
<h2>{{.Name}}</h2>
<ul>
{{range .Sections}}<li><span class="badge">{{.Number}}</span> <a href="{{.Href}}">{{.Title}}</a></li>
{{end}}</ul>
{{end}}
</body>
</html>
`
