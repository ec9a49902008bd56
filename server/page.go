package server

// previewPage is the single-page preview shell. It fetches the rendered
// fragment from /api/preview, hands katex-src spans to KaTeX for
// client-side typesetting, re-fetches on every reload event, and posts
// clicks on tagged nodes to /api/sync.
const previewPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>texlet preview</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.css">
<script defer src="https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/katex.min.js"></script>
<style>
  body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
  #banner { display: none; background: #fff3cd; border: 1px solid #ffe08a; padding: .5rem .75rem; margin-bottom: 1rem; }
  .math-display { margin: 1rem 0; text-align: center; }
  .math-error { background: #fdd; border-bottom: 1px dotted #c00; cursor: help; }
  table.tabular { border-collapse: collapse; margin: 1rem 0; }
  table.tabular td { padding: .25rem .6rem; }
  .cell-left { text-align: left; }
  .cell-center { text-align: center; }
  .cell-right { text-align: right; }
  .border-left { border-left: 1px solid #333; }
  .border-right { border-right: 1px solid #333; }
  tr.border-top td { border-top: 1px solid #333; }
  tr.border-bottom td { border-bottom: 1px solid #333; }
  .caption { font-style: italic; margin: .5rem 0; }
  .label { color: #888; font-size: .85em; }
  pre.opaque { background: #f6f6f6; padding: .5rem; overflow-x: auto; }
  [data-start] { cursor: pointer; }
  [data-start]:hover { background: #eef6ff; }
</style>
</head>
<body>
<div id="banner"></div>
<div id="preview"></div>
<script>
async function refresh() {
  const res = await fetch('/api/preview');
  const doc = await res.json();

  document.title = doc.path + ' - texlet preview';

  const banner = document.getElementById('banner');
  banner.textContent = doc.banner || '';
  banner.style.display = doc.banner ? 'block' : 'none';

  const preview = document.getElementById('preview');
  preview.innerHTML = doc.html;
  typeset(preview);
}

function typeset(root) {
  if (typeof katex === 'undefined') { return; }

  for (const span of root.querySelectorAll('.katex-src')) {
    const display = span.dataset.display === 'true';
    try {
      katex.render(span.textContent, span, {displayMode: display, throwOnError: true});
    } catch (err) {
      span.classList.add('math-error');
      span.title = String(err);
    }
  }
}

document.getElementById('preview').addEventListener('click', (ev) => {
  const el = ev.target.closest('[data-start]');
  if (!el) { return; }

  fetch('/api/sync', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({start: +el.dataset.start, end: +el.dataset.end}),
  });
});

new EventSource('/api/events').onmessage = () => refresh();
window.addEventListener('DOMContentLoaded', refresh);
</script>
</body>
</html>
`
