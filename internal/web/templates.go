package web

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Happiness Prediction</title>
  <style>
    body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; }
    .rating-group { margin-bottom: 1.5rem; }
    .rating-group label { margin-right: .75rem; }
  </style>
</head>
<body>
  <h1>Find out how happy you are with your living situation</h1>
  <form method="post" action="/submit">
    {{range .Groups}}
    <fieldset class="rating-group" id="{{.Key}}">
      <legend>{{.Prompt}}</legend>
      {{$key := .Key}}{{range .Stars}}
      <label for="{{$key}}-{{.Value}}">
        <input type="radio" class="star star-{{.Value}}" id="{{$key}}-{{.Value}}" name="{{$key}}" value="{{.Value}}"{{if .Checked}} checked{{end}}>
        {{.Value}}&#9733;
      </label>
      {{end}}
    </fieldset>
    {{end}}
    <button id="button" type="submit">Submit your ratings</button>
  </form>
  {{.Overlay}}
</body>
</html>`
